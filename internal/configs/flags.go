package configs

import "github.com/spf13/pflag"

// RegisterFlags adds a flag for each scalar configuration key. Lists are
// configured through the file or the environment.
func RegisterFlags(flags *pflag.FlagSet) {
	d := DefaultConfig()
	flags.String("key-path", d.KeyPath, "path of the private key file (public key is <path>.pub)")
	flags.Int("key-bits", d.KeyBits, "RSA modulus size for new key pairs")
	flags.Int("symmetric-key-bits", d.SymmetricKeyBits, "AES key size per file (128, 192 or 256)")
	flags.Bool("auto-generate", d.AutoGenerate, "generate a key pair on unlock when none exists")
	flags.String("encrypted-dir", d.EncryptedDir, "directory holding encrypted profile files")
	flags.String("plain-dir", d.PlainDir, "directory the profile is decrypted into")
	flags.String("backup-suffix", d.BackupSuffix, "suffix for backups of pre-existing plain files")
	flags.Int("max-depth", d.MaxDepth, "subdirectory depth to scan (-1 for unlimited)")
	flags.Int("workers", d.Workers, "files processed in parallel")
	flags.String("program", d.Program, "program launched by run")
	flags.String("audit-log", d.AuditLog, "audit log path (default beside the key pair)")
}
