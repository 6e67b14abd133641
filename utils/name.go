package utils

import "path/filepath"

func GetLiveDir(dataDir, name string) string {
	return filepath.Join(dataDir, "live", name)
}

func GetFullchainPath(dataDir, name string) string {
	return filepath.Join(GetLiveDir(dataDir, name), "fullchain")
}

func GetPrivkeyPath(dataDir, name string) string {
	return filepath.Join(GetLiveDir(dataDir, name), "privkey")
}
