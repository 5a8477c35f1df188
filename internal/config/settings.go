package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// reminderPattern accepts the ISO-8601 durations used for VALARM triggers (e.g. -P1D, PT2H).
var reminderPattern = regexp.MustCompile(`^-?P(\d+[WD])?(T(\d+H)?(\d+M)?(\d+S)?)?$`)

// Settings holds every user-tunable parameter of the register.
type Settings struct {
	DataFile     string          `mapstructure:"data_file"`
	ImagesDir    string          `mapstructure:"images_dir"`
	SnapshotFile string          `mapstructure:"snapshot_file"`
	Language     string          `mapstructure:"language"`
	ServerPort   string          `mapstructure:"server_port"`
	RefreshMin   int             `mapstructure:"refresh_interval_min"`
	Reminder     string          `mapstructure:"reminder_trigger"`
	Import       ImportSettings  `mapstructure:"import"`
	Publish      PublishSettings `mapstructure:"publish"`
}

// ImportSettings describes the default remote vCard source.
// The password is never stored here; it lives in the OS keyring.
type ImportSettings struct {
	URL  string `mapstructure:"url"`
	User string `mapstructure:"user"`
}

// PublishSettings selects how the portal snapshot leaves the machine.
type PublishSettings struct {
	Mode          string `mapstructure:"mode"`
	GitDir        string `mapstructure:"git_dir"`
	CommitMessage string `mapstructure:"commit_message"`
	S3Bucket      string `mapstructure:"s3_bucket"`
	S3Key         string `mapstructure:"s3_key"`
	S3Region      string `mapstructure:"s3_region"`
}

// NewViper returns a viper instance with defaults and environment binding applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDataFile, DefaultDataFile)
	v.SetDefault(KeyImagesDir, DefaultImagesDir)
	v.SetDefault(KeySnapshotFile, DefaultSnapshotFile)
	v.SetDefault(KeyLanguage, DefaultLanguage)
	v.SetDefault(KeyServerPort, DefaultPort)
	v.SetDefault(KeyRefreshMin, DefaultRefreshMin)
	v.SetDefault(KeyReminder, "")
	v.SetDefault(KeyImportURL, "")
	v.SetDefault(KeyImportUser, "")
	v.SetDefault(KeyPublishMode, PublishModeNone)
	v.SetDefault(KeyPublishGitDir, ".")
	v.SetDefault(KeyPublishMessage, DefaultCommitMsg)
	v.SetDefault(KeyPublishBucket, "")
	v.SetDefault(KeyPublishKey, DefaultS3Key)
	v.SetDefault(KeyPublishRegion, "")
	return v
}

// LoadSettings reads the optional settings file into v and decodes the result.
// A missing file is not an error: defaults, environment and flags still apply.
func LoadSettings(v *viper.Viper, file string) (Settings, error) {
	log := slog.With(LogKeyComponent, CompConfig, LogKeyFile, file)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return Settings{}, fmt.Errorf("%s: %w", ErrSettingsRead, err)
			}
			log.Debug(MsgSettingsMissing)
		} else {
			log.Debug(MsgSettingsLoaded)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrSettingsDecode, err)
	}
	return s, s.Validate()
}

// Validate checks values that would otherwise fail late (at serve or publish time).
func (s Settings) Validate() error {
	if err := ValidatePort(s.ServerPort); err != nil {
		return err
	}

	switch s.Publish.Mode {
	case PublishModeNone, PublishModeGit, PublishModeS3:
	default:
		return fmt.Errorf("%s: %q", ErrPublishMode, s.Publish.Mode)
	}

	if s.Reminder != "" && (s.Reminder == "P" || s.Reminder == "-P" || !reminderPattern.MatchString(s.Reminder)) {
		return fmt.Errorf("%s: %q", ErrReminderTrigger, s.Reminder)
	}
	return nil
}

// Lang returns the configured language, falling back to the default for unknown codes.
func (s Settings) Lang() string {
	if slices.Contains(SupportedLanguages, s.Language) {
		return s.Language
	}
	return DefaultLanguage
}

// ValidatePort ensures the port is numeric and within the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}
