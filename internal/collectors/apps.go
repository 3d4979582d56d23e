package collectors

import (
	"log"
	"strconv"
	"strings"
	"time"

	"nabz/internal/models"

	"github.com/shirou/gopsutil/v3/process"
)

const lsappinfoTimeout = 3 * time.Second

// AppsCollector enumerates running user-facing applications. The preferred
// source is the launch-services registry; the fallback scans the process
// table for app bundles.
type AppsCollector struct {
	run   Runner
	procs func() ([]models.RunningApp, error)
}

// NewAppsCollector builds a collector with the default OS bindings.
func NewAppsCollector() *AppsCollector {
	return &AppsCollector{run: Run, procs: scanProcessBundles}
}

// Collect returns the running-application list; an empty list on total
// failure, never an error.
func (a *AppsCollector) Collect() []models.RunningApp {
	if out, err := a.run(lsappinfoTimeout, "lsappinfo", "list"); err == nil {
		if apps := parseLSAppInfo(out); len(apps) > 0 {
			return apps
		}
	} else {
		log.Printf("[APPS] lsappinfo unavailable, downgrading: %v", err)
	}

	apps, err := a.procs()
	if err != nil {
		log.Printf("[APPS] process scan failed: %v", err)
		return nil
	}
	return apps
}

// parseLSAppInfo decodes `lsappinfo list` output. Each entry opens with a
// line like `12) "Safari" ASN:0x0-0x9a09a:` and is followed by indented
// key/value lines; only name, bundle id, pid and visibility matter here.
func parseLSAppInfo(out string) []models.RunningApp {
	var apps []models.RunningApp
	var cur *models.RunningApp

	flush := func() {
		if cur != nil && cur.Name != "" {
			apps = append(apps, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)

		if q1 := strings.IndexByte(trimmed, '"'); q1 >= 0 && strings.Contains(trimmed, ") ") && strings.Contains(trimmed, "ASN:") {
			flush()
			q2 := strings.IndexByte(trimmed[q1+1:], '"')
			if q2 < 0 {
				continue
			}
			cur = &models.RunningApp{
				Name:       trimmed[q1+1 : q1+1+q2],
				Foreground: strings.Contains(trimmed, "(in front)"),
			}
			continue
		}

		if cur == nil {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "bundleID="):
			cur.BundleID = strings.Trim(strings.TrimPrefix(trimmed, "bundleID="), `"`)
		case strings.HasPrefix(trimmed, "pid ="):
			if pid, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(trimmed, "pid =")), 10, 32); err == nil {
				cur.PID = int32(pid)
			}
		case strings.Contains(trimmed, "ApplicationType=") && strings.Contains(trimmed, "hidden"):
			cur.Hidden = true
		}
	}
	flush()
	return apps
}

// scanProcessBundles walks the process table looking for executables that
// live inside an app bundle. Foreground state is unknowable from here and
// left false.
func scanProcessBundles() ([]models.RunningApp, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	var apps []models.RunningApp
	for _, p := range procs {
		exe, err := p.Exe()
		if err != nil {
			continue
		}
		idx := strings.Index(exe, ".app/")
		if idx < 0 {
			continue
		}
		bundle := exe[:idx]
		if slash := strings.LastIndexByte(bundle, '/'); slash >= 0 {
			bundle = bundle[slash+1:]
		}
		apps = append(apps, models.RunningApp{
			Name: CleanProcessName(bundle + ".app"),
			PID:  p.Pid,
		})
	}
	return apps, nil
}
