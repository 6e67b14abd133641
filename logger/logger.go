package logger

import (
	"github.com/charmbracelet/log"
	"os"
)

// Logger is the process-wide logger used by every package
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "Acme Redirect",
})
