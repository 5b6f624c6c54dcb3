package common

// Version is overridden at build time with -ldflags "-X github.com/ruteri/sites-portal-backend/common.Version=..."
var Version = "dev"

// PackageName is used as the metrics namespace.
const PackageName = "sites_portal"
