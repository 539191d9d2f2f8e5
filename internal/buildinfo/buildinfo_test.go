package buildinfo

import (
	"testing"
)

func TestPrintBuildInfo_NoPanicOnEmptyValues(t *testing.T) {
	BuildVersion, BuildDate, BuildCommit = "", "", ""
	PrintBuildInfo()

	BuildVersion, BuildDate, BuildCommit = "1.2.3", "2025-06-01", "abcdef0"
	PrintBuildInfo()
}
