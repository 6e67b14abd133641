package renewal

import (
	"errors"
	"fmt"
	"github.com/1f349/acme-redirect/config"
	"github.com/1f349/acme-redirect/utils"
	"github.com/go-acme/lego/v4/certcrypto"
	"io/fs"
	"os"
	"time"
)

const day = 24 * time.Hour

// Status describes the current certificate stored for a CertConfig
type Status struct {
	Name     string
	NotAfter time.Time
	DaysLeft int64

	// Due is true when the certificate should be renewed
	Due bool

	// Missing is true when no certificate has been issued yet
	Missing bool
}

// LoadStatus reads the live certificate for cert from the data directory and
// compares its expiry with `renew_if_days_left`
func LoadStatus(conf *config.Config, cert config.CertConfig, now time.Time) (Status, error) {
	path := utils.GetFullchainPath(conf.DataDir, cert.Name)
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		break
	case errors.Is(err, fs.ErrNotExist):
		return Status{Name: cert.Name, Due: true, Missing: true}, nil
	default:
		return Status{}, fmt.Errorf("failed to read certificate: %w", err)
	}

	parsed, err := certcrypto.ParsePEMCertificate(raw)
	if err != nil {
		return Status{}, fmt.Errorf("failed to parse certificate %s: %w", path, err)
	}

	daysLeft := int64(parsed.NotAfter.Sub(now) / day)
	return Status{
		Name:     cert.Name,
		NotAfter: parsed.NotAfter,
		DaysLeft: daysLeft,
		Due:      daysLeft <= conf.RenewIfDaysLeft,
	}, nil
}
