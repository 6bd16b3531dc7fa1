//go:build windows

package cmd

// getTermWidthIoctl has no console query here, so termWidth relies on
// $COLUMNS or its default.
func getTermWidthIoctl() int {
	return 0
}
