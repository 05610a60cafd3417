package constants

import "os"

const (
	// DefaultFilePermissions sets the default permissions for regular files: (rw-r--r--).
	// Owner: read and write;
	// Group: read;
	// Others: read.
	DefaultFilePermissions os.FileMode = 0o644

	// PrivateFilePermissions is used for files holding credentials or user data: (rw-------).
	PrivateFilePermissions os.FileMode = 0o600

	// DefaultFolderPermissions sets the default permissions for regular folders: (rwxr-xr-x).
	// Owner: read, write, and execute;
	// Group: read and execute;
	// Others: read and execute.
	DefaultFolderPermissions os.FileMode = 0o755
)

// JSON file handling constants.
const (
	// ExtensionJSON is the extension of JSON files.
	ExtensionJSON = ".json"
	// TempFilePattern is the pattern for temporary files used by atomic writes.
	TempFilePattern = ".tmp-*"
)
