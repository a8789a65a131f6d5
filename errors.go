package docassets

import (
	"errors"

	"github.com/alnah/go-docassets/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// ErrInvalidAssetsDir is returned by NewEngine when the configured assets
	// directory does not exist or is not a directory.
	ErrInvalidAssetsDir = errors.New("invalid assets directory")

	// ErrAssetCopy is wrapped by every Diagnostic produced for a reference
	// whose source could not be copied.
	ErrAssetCopy = pipeline.ErrCopyAsset
)
