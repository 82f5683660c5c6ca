package workflows

import (
	"github.com/PolarWolf314/shroud/internal/audit"
	"github.com/PolarWolf314/shroud/internal/configs"
	logger "github.com/PolarWolf314/shroud/internal/logging"
	"github.com/PolarWolf314/shroud/internal/profile"
	"github.com/PolarWolf314/shroud/internal/secrets"

	"github.com/spf13/afero"
)

// Environment carries what every workflow needs. The zero Fs is the OS
// filesystem and a nil Audit records nothing.
type Environment struct {
	Fs     afero.Fs
	Config configs.Config
	Logger logger.Logger
	Audit  *audit.Trail
}

func (e Environment) fs() afero.Fs {
	if e.Fs != nil {
		return e.Fs
	}
	return afero.NewOsFs()
}

func (e Environment) keyStore() *secrets.KeyStore {
	return secrets.NewKeyStore(e.fs())
}

func (e Environment) fileCipher() *secrets.FileCipher {
	c := secrets.NewFileCipher(e.fs())
	if e.Config.SymmetricKeyBits != 0 {
		c.KeyBits = e.Config.SymmetricKeyBits
	}
	return c
}

func (e Environment) layout() profile.Layout {
	return profile.Layout{
		EncryptedDir: e.Config.EncryptedDir,
		PlainDir:     e.Config.PlainDir,
		DefaultFiles: e.Config.Files,
		BackupSuffix: e.Config.BackupSuffix,
		MaxDepth:     e.Config.MaxDepth,
	}
}

func (e Environment) session(keys *secrets.KeyPair) *profile.Session {
	return &profile.Session{
		Fs:      e.fs(),
		Layout:  e.layout(),
		Cipher:  e.fileCipher(),
		Keys:    keys,
		Logger:  e.Logger,
		Workers: e.Config.Workers,
	}
}

// record appends an audit entry, noting err when the operation failed.
func (e Environment) record(entry audit.Entry, err error) {
	if entry.KeyPath == "" {
		entry.KeyPath = e.Config.KeyPath
	}
	if err != nil {
		entry.Error = err.Error()
	}
	e.Audit.Record(entry)
}
