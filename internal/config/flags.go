package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/edtke/archivecheck/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   expected-state store DSN
//	-l string   legacy database DSN
//	-f string   transformation-run CSV path
//	-a string   account substitution CSV path
//	-D string   comma-separated "unitID=doi" pairs for the files-DB origin
//	-B string   comma-separated bag uuids for the vault origin
//	-i string   dataset index base URL
//	-v string   bag store (vault) base URL
//	-t int      fetch timeout, seconds
//	-m          read vault documents from the S3 mirror
//	-u string   S3 user
//	-p string   S3 password
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 base endpoint
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-d", "-l", "-f", "-a", "-D", "-B", "-i", "-v", "-t", "-m", "-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.StoreDSN, "d", config.StoreDSN, "expected-state store DSN")
	fs.StringVar(&config.LegacyDSN, "l", config.LegacyDSN, "legacy database DSN")
	fs.StringVar(&config.RunCSVPath, "f", config.RunCSVPath, "transformation-run CSV path")
	fs.StringVar(&config.AccountsCSVPath, "a", config.AccountsCSVPath, "account substitution CSV path")

	datasets := fs.String("D", strings.Join(config.Datasets, ","), "unitID=doi pairs, comma-separated")
	bagIDs := fs.String("B", strings.Join(config.BagIDs, ","), "bag uuids, comma-separated")

	fs.StringVar(&config.IndexBaseURL, "i", config.IndexBaseURL, "dataset index base URL")
	fs.StringVar(&config.VaultBaseURL, "v", config.VaultBaseURL, "bag store base URL")

	fetchTimeout := fs.Int("t", int(config.FetchTimeout.Seconds()), "fetch timeout (in seconds)")

	fs.BoolVar(&config.UseS3Mirror, "m", config.UseS3Mirror, "fetch vault documents from the S3 mirror")
	fs.StringVar(&config.S3User, "u", config.S3User, "S3 user")
	fs.StringVar(&config.S3Password, "p", config.S3Password, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.FetchTimeout = time.Duration(*fetchTimeout) * time.Second
	config.Datasets = splitList(*datasets)
	config.BagIDs = splitList(*bagIDs)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
