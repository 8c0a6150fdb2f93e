package flags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/skyforge/primeup/prime"
)

const (
	LogFormat = "log-format"
	LogLevel  = "log-level"
	LogSource = "log-source"

	APIURL       = "api-url"
	Catalog      = "catalog"
	SSHPublicKey = "ssh-public-key"
)

// Register declares the global flags on the root command's flag set and binds
// them to viper, so every value can also come from a PRIMEUP_* variable.
func Register(flags *flag.FlagSet) {
	flags.String(LogFormat, "text", "log format (json, text)")
	flags.String(LogLevel, "INFO", "minimum log level")
	flags.Bool(LogSource, false, "add source code location to logs")

	flags.String(APIURL, prime.DefaultAPIEndpoint, "base URL of the pods API")
	flags.String(Catalog, inHome(".prime/vms.csv"), "path to the instance type catalog CSV")
	flags.String(SSHPublicKey, inHome(".ssh/id_rsa.pub"), "public key to register with the provider")

	viper.SetEnvPrefix("primeup")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	lo.Must0(viper.BindPFlags(flags))
}

func inHome(rel string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return rel
	}
	return filepath.Join(home, rel)
}
