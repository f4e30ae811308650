// internal/backend/chain.go
package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"thermal-print-service/internal/codepage"
	"thermal-print-service/internal/config"
	"thermal-print-service/internal/dispatch"
	"thermal-print-service/internal/execx"
	"thermal-print-service/internal/resolver"
)

// Deps are the shared collaborators of the backends in a chain
type Deps struct {
	Runner execx.Runner
	// NameCache holds the Windows printer name across dispatches
	NameCache *resolver.NameCache
	Logger    *zap.Logger
}

// BuildChain assembles the enabled backends for goos in priority order:
// USB protocol client, spooler command, raw device, legacy endpoints.
func BuildChain(goos string, cfg *config.Config, deps Deps) (dispatch.Chain, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	printer := cfg.Printer

	profiles, err := codepage.LookupAll(printer.Profiles)
	if err != nil {
		return nil, fmt.Errorf("printer.profiles: %w", err)
	}
	rawProfile, err := codepage.Lookup(printer.RawDeviceProfile)
	if err != nil {
		return nil, fmt.Errorf("printer.raw_device_profile: %w", err)
	}

	var backends []dispatch.Backend

	if cfg.BackendEnabled(string(dispatch.KindProtocolClient)) {
		vendors := resolver.NewVendorDatabase()
		for _, raw := range cfg.USB.ExtraVendorIDs {
			id, err := parseVendorID(raw)
			if err != nil {
				return nil, fmt.Errorf("usb.extra_vendor_ids: %w", err)
			}
			vendors.AddVendor(id, "configured vendor", nil)
		}
		backends = append(backends, NewConnectionBackend(
			"usb",
			dispatch.KindProtocolClient,
			resolver.NewUSBPrinterResolver(vendors, logger),
			USBProtocolFactory(cfg.USB.Endpoint, cfg.USB.WriteTimeout, logger),
			profiles,
			logger,
		))
	}

	if cfg.BackendEnabled(string(dispatch.KindSpooler)) {
		if deps.Runner == nil {
			return nil, fmt.Errorf("spooler backend requires a command runner")
		}
		if goos == "windows" {
			backends = append(backends, NewSpoolerBackend(
				"windows-raw",
				resolver.NewWindowsPrinterResolver(deps.Runner, cfg.Windows.EnumerateCommand, printer.AcceptedNames, deps.NameCache, logger),
				deps.Runner,
				RawPrintCommand(cfg.Windows.RawPrintHelper),
				profiles,
				printer.TempDir,
				logger,
			))
		} else {
			backends = append(backends, NewSpoolerBackend(
				"cups",
				resolver.NewQueueResolver(deps.Runner, printer.LpstatBinary, printer.AcceptedNames, printer.UseDefaultQueue, logger),
				deps.Runner,
				LprCommand(printer.LprBinary),
				profiles,
				printer.TempDir,
				logger,
			))
		}
	}

	if cfg.BackendEnabled(string(dispatch.KindRawDevice)) && goos != "windows" {
		backends = append(backends, NewRawDeviceBackend(
			resolver.NewDevicePathResolver(printer.DevicePaths, printer.DeviceGlob, logger),
			rawProfile,
			logger,
		))
	}

	if cfg.BackendEnabled(string(dispatch.KindLegacy)) && len(cfg.Legacy.Endpoints) > 0 {
		backends = append(backends, NewConnectionBackend(
			"legacy",
			dispatch.KindLegacy,
			resolver.NewEndpointResolver(cfg.Legacy.Endpoints, logger),
			EndpointProtocolFactory(logger),
			[]codepage.Profile{rawProfile},
			logger,
		))
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no backend is available on %s with the configured printer.backends", goos)
	}
	return dispatch.NewChain(backends...), nil
}

func parseVendorID(raw string) (gousb.ID, error) {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "0x")
	id, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid vendor id %q: %w", raw, err)
	}
	return gousb.ID(id), nil
}
