package backup

import "errors"

var (
	ErrInvalidBackup  = errors.New("invalid backup file format")
	ErrBackupNotFound = errors.New("backup not found")
	ErrBackupLocked   = errors.New("backup is encrypted and no encryption key is configured")
)
