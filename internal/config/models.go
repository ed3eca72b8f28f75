package config

// ServerConfig represents the mail-facing server configuration
type ServerConfig struct {
	FilterType      string
	ListenAddress   string
	BlockPhishing   bool
	ModifySubject   bool
	SubjectPrefix   string
	MaxTextSize     int
	VerdictHeader   string
	TrustHeader     string
	TierHeader      string
	ReasonHeader    string
	AttackHeader    string
	UpstreamEnabled bool
	UpstreamAddress string
	UpstreamPort    int
}

// ClassifierConfig represents the ensemble configuration
type ClassifierConfig struct {
	ModelPaths    []string
	FusionWeights []float64
	Threshold     float64
}

// TrustConfig represents the trust aggregation weights
type TrustConfig struct {
	Confidence float64
	Fidelity   float64
	Stability  float64
}

// ProbeConfig represents the instability probe configuration
type ProbeConfig struct {
	Seed        int64
	MaxParallel int
	Strategies  []string
}

// DomainsConfig represents the trusted-domain and brand lists
type DomainsConfig struct {
	Trusted      []string
	Brands       []string
	TypoPatterns []string
}

// MySQLConfig represents the MySQL cache backend configuration
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// RedisConfig represents the Redis cache backend configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FilterType:      c.GetString("server.filter_type"),
		ListenAddress:   c.GetString("server.listen_address"),
		BlockPhishing:   c.GetBool("server.block_phishing"),
		ModifySubject:   c.GetBool("server.modify_subject"),
		SubjectPrefix:   c.GetString("server.subject_prefix"),
		MaxTextSize:     c.GetInt("server.max_text_size"),
		VerdictHeader:   c.GetString("server.headers.verdict"),
		TrustHeader:     c.GetString("server.headers.trust"),
		TierHeader:      c.GetString("server.headers.tier"),
		ReasonHeader:    c.GetString("server.headers.reason"),
		AttackHeader:    c.GetString("server.headers.attack"),
		UpstreamEnabled: c.GetBool("server.upstream.enabled"),
		UpstreamAddress: c.GetString("server.upstream.address"),
		UpstreamPort:    c.GetInt("server.upstream.port"),
	}
}

// GetClassifier returns the ensemble configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		ModelPaths:    c.GetStringSlice("classifier.model_paths"),
		FusionWeights: c.GetFloat64Slice("classifier.fusion_weights"),
		Threshold:     c.GetFloat64("classifier.threshold"),
	}
}

// GetTrust returns the trust aggregation weights
func (c *Config) GetTrust() TrustConfig {
	return TrustConfig{
		Confidence: c.GetFloat64("trust.weights.confidence"),
		Fidelity:   c.GetFloat64("trust.weights.fidelity"),
		Stability:  c.GetFloat64("trust.weights.stability"),
	}
}

// GetProbe returns the instability probe configuration
func (c *Config) GetProbe() ProbeConfig {
	return ProbeConfig{
		Seed:        c.GetInt64("probe.seed"),
		MaxParallel: c.GetInt("probe.max_parallel"),
		Strategies:  c.GetStringSlice("probe.strategies"),
	}
}

// GetDomains returns the domain list configuration
func (c *Config) GetDomains() DomainsConfig {
	return DomainsConfig{
		Trusted:      c.GetStringSlice("domains.trusted"),
		Brands:       c.GetStringSlice("domains.brands"),
		TypoPatterns: c.GetStringSlice("domains.typo_patterns"),
	}
}

// GetMySQL returns the MySQL cache backend configuration
func (c *Config) GetMySQL() MySQLConfig {
	return MySQLConfig{
		Host:     c.GetString("cache.mysql.host"),
		Port:     c.GetInt("cache.mysql.port"),
		User:     c.GetString("cache.mysql.user"),
		Password: c.GetString("cache.mysql.password"),
		Database: c.GetString("cache.mysql.database"),
	}
}

// GetRedis returns the Redis cache backend configuration
func (c *Config) GetRedis() RedisConfig {
	return RedisConfig{
		Address:  c.GetString("cache.redis.address"),
		Password: c.GetString("cache.redis.password"),
		DB:       c.GetInt("cache.redis.db"),
	}
}
