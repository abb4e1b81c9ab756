package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file, read from the repository root
const FileName = ".releasekit.yml"

// RepoConfig is the on-disk configuration. Unset fields keep their defaults.
type RepoConfig struct {
	Trunk      *string           `yaml:"trunk,omitempty"`
	Remote     *string           `yaml:"remote,omitempty"`
	Product    *string           `yaml:"product,omitempty"`
	Owner      *string           `yaml:"owner,omitempty"`
	Repository *string           `yaml:"repository,omitempty"`
	Dependency *DependencyConfig `yaml:"dependency,omitempty"`
	Publish    *PublishConfig    `yaml:"publish,omitempty"`
	Mail       *MailConfig       `yaml:"mail,omitempty"`
	Templates  *string           `yaml:"templates,omitempty"`
}

// DependencyConfig locates the platform version the plugin is built against
type DependencyConfig struct {
	Property *string `yaml:"property,omitempty"`
	Parent   *string `yaml:"parent,omitempty"`
}

// PublishConfig selects the object store
type PublishConfig struct {
	Backend   *string `yaml:"backend,omitempty"`
	Bucket    *string `yaml:"bucket,omitempty"`
	Namespace *string `yaml:"namespace,omitempty"`
	Region    *string `yaml:"region,omitempty"`
	Endpoint  *string `yaml:"endpoint,omitempty"`
	Secure    *bool   `yaml:"secure,omitempty"`
}

// MailConfig addresses the announcement
type MailConfig struct {
	Sender    *string `yaml:"sender,omitempty"`
	Recipient *string `yaml:"recipient,omitempty"`
	Server    *string `yaml:"server,omitempty"`
	Port      *int    `yaml:"port,omitempty"`
}

// Config is the resolved configuration used by a run
type Config struct {
	Trunk      string
	Remote     string
	Product    string
	Owner      string
	Repository string

	DependencyProperty string
	DependencyParent   string

	PublishBackend   string
	PublishBucket    string
	PublishNamespace string
	PublishRegion    string
	PublishEndpoint  string
	PublishSecure    bool

	MailSender    string
	MailRecipient string
	MailServer    string
	MailPort      int

	// TemplateDir holds email_template.txt and email_template.html overrides, relative to the repository root
	TemplateDir string
}

// Default returns the configuration for an Elasticsearch plugin repository
func Default() *Config {
	return &Config{
		Trunk:              "master",
		Remote:             "origin",
		Product:            "Elasticsearch",
		Owner:              "elastic",
		DependencyProperty: "elasticsearch.version",
		DependencyParent:   "elasticsearch-parent",
		PublishBackend:     "s3",
		PublishBucket:      "download.elasticsearch.org",
		PublishNamespace:   "elasticsearch",
		PublishSecure:      true,
		MailRecipient:      "discuss+announcements@elastic.co",
		MailServer:         "localhost",
		MailPort:           25,
		TemplateDir:        filepath.Join("dev-tools", "templates"),
	}
}

// GetRepoConfig reads the configuration file. A missing file yields an empty config.
func GetRepoConfig(repoRoot string) (*RepoConfig, error) {
	data, err := os.ReadFile(filepath.Join(repoRoot, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &RepoConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var config RepoConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return &config, nil
}

// Load resolves defaults, the repository file and then environment variables
func Load(repoRoot string) (*Config, error) {
	repoConfig, err := GetRepoConfig(repoRoot)
	if err != nil {
		return nil, err
	}

	config := Default()
	config.apply(repoConfig)
	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) apply(rc *RepoConfig) {
	setString(&c.Trunk, rc.Trunk)
	setString(&c.Remote, rc.Remote)
	setString(&c.Product, rc.Product)
	setString(&c.Owner, rc.Owner)
	setString(&c.Repository, rc.Repository)
	setString(&c.TemplateDir, rc.Templates)

	if d := rc.Dependency; d != nil {
		setString(&c.DependencyProperty, d.Property)
		setString(&c.DependencyParent, d.Parent)
	}
	if p := rc.Publish; p != nil {
		setString(&c.PublishBackend, p.Backend)
		setString(&c.PublishBucket, p.Bucket)
		setString(&c.PublishNamespace, p.Namespace)
		setString(&c.PublishRegion, p.Region)
		setString(&c.PublishEndpoint, p.Endpoint)
		if p.Secure != nil {
			c.PublishSecure = *p.Secure
		}
	}
	if m := rc.Mail; m != nil {
		setString(&c.MailSender, m.Sender)
		setString(&c.MailRecipient, m.Recipient)
		setString(&c.MailServer, m.Server)
		if m.Port != nil && *m.Port > 0 {
			c.MailPort = *m.Port
		}
	}
}

func (c *Config) applyEnv() error {
	setEnv(&c.MailSender, "MAIL_SENDER")
	setEnv(&c.MailRecipient, "MAIL_TO")
	setEnv(&c.MailServer, "SMTP_SERVER")
	setEnv(&c.PublishBackend, "RELEASEKIT_PUBLISH_BACKEND")
	setEnv(&c.PublishBucket, "RELEASEKIT_PUBLISH_BUCKET")
	setEnv(&c.PublishEndpoint, "RELEASEKIT_PUBLISH_ENDPOINT")
	setEnv(&c.PublishRegion, "AWS_REGION")

	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 {
			return fmt.Errorf("invalid SMTP_PORT %q", port)
		}
		c.MailPort = p
	}
	return nil
}

func setString(dst *string, value *string) {
	if value != nil && *value != "" {
		*dst = *value
	}
}

func setEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}
