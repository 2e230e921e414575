//go:build !nohdfs

package capability

// hdfsBuilt is true unless this build was compiled with -tags nohdfs.
const hdfsBuilt = true
