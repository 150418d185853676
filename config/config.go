package config

import (
	"flag"
	"io"
	"net"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

type Config struct {
	Addr   string
	DBUrl  string
	Import string
	Debug  bool
}

// ParseFlags reads the configuration from the command line.
func ParseFlags(args []string) (Config, error) {
	return Parse(flag.CommandLine.Name(), args, flag.CommandLine.Output())
}

func Parse(name string, args []string, output io.Writer) (cfg Config, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	var host string
	fs.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	fs.UintVar(&port, "port", 80, "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", "survey-tally.sqlite", "path to SQLite3 DB file")
	fs.StringVar(&cfg.Import, "import", "", "YAML or JSON file of surveys to create at startup")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")

	if err = fs.Parse(args); err != nil {
		return
	}
	if fs.NArg() > 0 {
		err = errors.Errorf("unexpected arguments %v", fs.Args())
		return
	}
	if port > 65535 {
		err = errors.Errorf("invalid -port %d", port)
		return
	}
	if cfg.DBUrl == "" {
		err = errors.New("missing parameter -db-url")
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
