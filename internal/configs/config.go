package configs

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
)

// FileName is the config file looked up from the working directory upwards.
const FileName = "shroud.toml"

// AuditFileName is the audit log written next to the key pair unless
// audit_log says otherwise.
const AuditFileName = "shroud-audit.jsonl"

type Config struct {
	KeyPath          string   `koanf:"key_path" json:"key_path,omitempty" toml:"key_path"`
	KeyBits          int      `koanf:"key_bits" json:"key_bits,omitempty" toml:"key_bits"`
	SymmetricKeyBits int      `koanf:"symmetric_key_bits" json:"symmetric_key_bits,omitempty" toml:"symmetric_key_bits"`
	AutoGenerate     bool     `koanf:"auto_generate" json:"auto_generate,omitempty" toml:"auto_generate"`
	EncryptedDir     string   `koanf:"encrypted_dir" json:"encrypted_dir,omitempty" toml:"encrypted_dir"`
	PlainDir         string   `koanf:"plain_dir" json:"plain_dir,omitempty" toml:"plain_dir"`
	BackupSuffix     string   `koanf:"backup_suffix" json:"backup_suffix,omitempty" toml:"backup_suffix"`
	Files            []string `koanf:"files" json:"files,omitempty" toml:"files"`
	MaxDepth         int      `koanf:"max_depth" json:"max_depth,omitempty" toml:"max_depth"`
	Workers          int      `koanf:"workers" json:"workers,omitempty" toml:"workers"`
	Program          string   `koanf:"program" json:"program,omitempty" toml:"program"`
	ProgramArgs      []string `koanf:"program_args" json:"program_args,omitempty" toml:"program_args"`
	AuditLog         string   `koanf:"audit_log" json:"audit_log,omitempty" toml:"audit_log,omitempty"`
}

// Keys lists every configuration key. Environment variables and flags that
// map to anything else are ignored.
var Keys = []string{
	"key_path",
	"key_bits",
	"symmetric_key_bits",
	"auto_generate",
	"encrypted_dir",
	"plain_dir",
	"backup_suffix",
	"files",
	"max_depth",
	"workers",
	"program",
	"program_args",
	"audit_log",
}

// listKeys hold string lists.
var listKeys = []string{"files", "program_args"}

func isKey(key string) bool {
	return slices.Contains(Keys, key)
}

// DefaultFiles is the set of portable Firefox profile files that are always
// considered for encryption, even before they exist.
var DefaultFiles = []string{
	"bookmarks.html",
	"cert8.db",
	"cookies.sqlite",
	"formhistory.sqlite",
	"key3.db",
	"permissions.sqlite",
	"places.sqlite",
	"secmod.db",
	"sessionstore.js",
	"sessionstore-backups/recovery.js",
	"sessionstore-backups/recovery.bak",
	"sessionstore-backups/previous.js",
}

func DefaultConfig() Config {
	return Config{
		KeyPath:          "encrypted_profile_key",
		KeyBits:          2048,
		SymmetricKeyBits: 256,
		AutoGenerate:     true,
		EncryptedDir:     "encrypted_profile",
		PlainDir:         filepath.Join("Data", "profile"),
		BackupSuffix:     ".plain",
		Files:            slices.Clone(DefaultFiles),
		MaxDepth:         -1,
		Workers:          1,
		Program:          "FirefoxPortable.exe",
		ProgramArgs:      []string{"-no-remote"},
	}
}

// AuditPath returns audit_log, or the default log beside the key pair.
func (c Config) AuditPath() string {
	if c.AuditLog != "" {
		return c.AuditLog
	}
	return filepath.Join(filepath.Dir(c.KeyPath), AuditFileName)
}

// ResolvePaths returns a copy with relative key_path, encrypted_dir,
// plain_dir and audit_log joined onto base. Program is left alone so it can
// still be found on PATH.
func (c Config) ResolvePaths(base string) Config {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(base, path)
	}
	c.KeyPath = resolve(c.KeyPath)
	c.EncryptedDir = resolve(c.EncryptedDir)
	c.PlainDir = resolve(c.PlainDir)
	c.AuditLog = resolve(c.AuditLog)
	return c
}

func (c Config) Validate() error {
	var errs []error
	if c.KeyPath == "" {
		errs = append(errs, errors.New("key_path cannot be empty"))
	}
	if c.KeyBits < 1024 {
		errs = append(errs, fmt.Errorf("key_bits: must be at least 1024, got %d", c.KeyBits))
	}
	switch c.SymmetricKeyBits {
	case 128, 192, 256:
	default:
		errs = append(errs, fmt.Errorf("symmetric_key_bits: must be 128, 192 or 256, got %d", c.SymmetricKeyBits))
	}
	if c.EncryptedDir == "" {
		errs = append(errs, errors.New("encrypted_dir cannot be empty"))
	}
	if c.PlainDir == "" {
		errs = append(errs, errors.New("plain_dir cannot be empty"))
	}
	if c.EncryptedDir != "" && filepath.Clean(c.EncryptedDir) == filepath.Clean(c.PlainDir) {
		errs = append(errs, errors.New("encrypted_dir and plain_dir must differ"))
	}
	if c.BackupSuffix == "" {
		errs = append(errs, errors.New("backup_suffix cannot be empty"))
	}
	for _, f := range c.Files {
		if filepath.IsAbs(f) {
			errs = append(errs, fmt.Errorf("files: %q must be relative to encrypted_dir", f))
		}
	}
	if c.MaxDepth < -1 {
		errs = append(errs, fmt.Errorf("max_depth: must be -1 or greater, got %d", c.MaxDepth))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers: must be at least 1, got %d", c.Workers))
	}

	return errors.Join(errs...)
}
