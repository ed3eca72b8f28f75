package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/di"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the analysis
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run reads one email, analyzes it and prints the verdict
func run(flags *di.CLIFlags, logger *zap.Logger, emailFilter core.EmailFilter) error {
	defer logger.Sync()

	email, err := readEmail(flags, logger)
	if err != nil {
		return err
	}

	if _, err := emailFilter.ProcessEmail(context.Background(), email); err != nil {
		return err
	}
	return nil
}

// readEmail parses an RFC 5322 message from the input file or stdin
func readEmail(flags *di.CLIFlags, logger *zap.Logger) (*core.Email, error) {
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file %s: %w", flags.InputFile, err)
		}
		defer file.Close()
		emailReader = file
		logger.Debug("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Debug("Reading email from stdin")
	}

	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read email body: %w", err)
	}

	email := &core.Email{
		From:    msg.Header.Get("From"),
		To:      strings.Split(msg.Header.Get("To"), ","),
		Subject: msg.Header.Get("Subject"),
		Body:    string(bodyBytes),
		Headers: make(map[string][]string),
	}
	for k, v := range msg.Header {
		email.Headers[k] = v
	}
	return email, nil
}
