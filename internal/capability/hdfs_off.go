//go:build nohdfs

package capability

// hdfsBuilt is false when this build was compiled with -tags nohdfs.
const hdfsBuilt = false
