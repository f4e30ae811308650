package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thermal-print-service/internal/config"
	"thermal-print-service/internal/execx/execxtest"
	"thermal-print-service/internal/resolver"
)

func chainConfig() *config.Config {
	return &config.Config{
		Printer: config.PrinterConfig{
			AcceptedNames:    []string{"Albaranes"},
			DevicePaths:      []string{"/dev/usb/lp0"},
			Backends:         []string{"protocol-client", "spooler", "raw-device", "legacy"},
			Profiles:         []string{"CP858", "WINDOWS-1252"},
			RawDeviceProfile: "CP858",
			UseDefaultQueue:  true,
		},
		Windows: config.WindowsConfig{RawPrintHelper: "RawPrint.exe"},
	}
}

func TestBuildChain(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		mutate func(*config.Config)
		want   []string
	}{
		{
			name: "linux",
			goos: "linux",
			want: []string{"usb", "cups", "raw-device"},
		},
		{
			name: "windows has no raw device",
			goos: "windows",
			want: []string{"usb", "windows-raw"},
		},
		{
			name:   "legacy endpoints configured",
			goos:   "linux",
			mutate: func(c *config.Config) { c.Legacy.Endpoints = []string{"tcp:10.0.0.5"} },
			want:   []string{"usb", "cups", "raw-device", "legacy"},
		},
		{
			name: "order is fixed regardless of config order",
			goos: "linux",
			mutate: func(c *config.Config) {
				c.Printer.Backends = []string{"raw-device", "spooler"}
			},
			want: []string{"cups", "raw-device"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := chainConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			chain, err := BuildChain(tt.goos, cfg, Deps{
				Runner:    execxtest.NewRunner(),
				NameCache: resolver.NewNameCache(),
				Logger:    zap.NewNop(),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, chain.Names())
		})
	}
}

func TestBuildChain_Profiles(t *testing.T) {
	chain, err := BuildChain("linux", chainConfig(), Deps{Runner: execxtest.NewRunner()})
	require.NoError(t, err)

	for _, b := range chain {
		var names []string
		for _, p := range b.Profiles() {
			names = append(names, p.Name)
		}
		if b.Name() == "raw-device" {
			assert.Equal(t, []string{"CP858"}, names)
		} else {
			assert.Equal(t, []string{"CP858", "WINDOWS-1252"}, names)
		}
	}
}

func TestBuildChain_Errors(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		mutate func(*config.Config)
	}{
		{"unknown profile", "linux", func(c *config.Config) { c.Printer.Profiles = []string{"KOI8"} }},
		{"unknown raw profile", "linux", func(c *config.Config) { c.Printer.RawDeviceProfile = "KOI8" }},
		{"bad vendor id", "linux", func(c *config.Config) { c.USB.ExtraVendorIDs = []string{"zz"} }},
		{"nothing available", "windows", func(c *config.Config) { c.Printer.Backends = []string{"raw-device"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := chainConfig()
			tt.mutate(cfg)
			_, err := BuildChain(tt.goos, cfg, Deps{Runner: execxtest.NewRunner()})
			assert.Error(t, err)
		})
	}
}
