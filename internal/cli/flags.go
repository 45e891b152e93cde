package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// NormalizeFlagName lets every flag also be spelled with underscores,
// e.g. --user_id for --user-id.
func NormalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// NormalizeWithAliases is NormalizeFlagName plus renamed flags, keyed by
// their normalized old name.
func NormalizeWithAliases(aliases map[string]string) func(*pflag.FlagSet, string) pflag.NormalizedName {
	return func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		n := NormalizeFlagName(f, name)
		if to, ok := aliases[string(n)]; ok {
			return pflag.NormalizedName(to)
		}
		return n
	}
}

// BindRemoteFlags registers the connection flags on fs.
func BindRemoteFlags(fs *pflag.FlagSet, r *RemoteOptions) {
	fs.StringVar(&r.UserID, "user-id", "", "service user id (default $ALCHEMISCALE_ID)")
	fs.StringVar(&r.UserKey, "user-key", "", "service user key (default $ALCHEMISCALE_KEY)")
	fs.StringVar(&r.APIURL, "api-url", "", "service URL (default $ALCHEMISCALE_URL or https://api.alchemiscale.org)")
	fs.DurationVar(&r.Timeout, "timeout", 0, "per-request timeout, 0 for none")
}
