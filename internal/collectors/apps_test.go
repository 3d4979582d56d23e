package collectors

import (
	"fmt"
	"testing"

	"nabz/internal/models"
)

const lsappinfoFixture = `1) "Safari" ASN:0x0-0x9a09a: (in front)
    bundleID="com.apple.Safari"
    pid = 501
    type="Foreground"
2) "Xcode" ASN:0x0-0x9b0aa:
    bundleID="com.apple.dt.Xcode"
    pid = 742
3) "Finder" ASN:0x0-0x1c01c:
    bundleID="com.apple.finder"
    pid = 310
    ApplicationType="UIElement" flags= hidden
`

func TestParseLSAppInfo(t *testing.T) {
	apps := parseLSAppInfo(lsappinfoFixture)
	if len(apps) != 3 {
		t.Fatalf("got %d apps, want 3", len(apps))
	}

	safari := apps[0]
	if safari.Name != "Safari" || safari.BundleID != "com.apple.Safari" || safari.PID != 501 {
		t.Errorf("safari entry = %+v", safari)
	}
	if !safari.Foreground {
		t.Error("front app must be marked foreground")
	}

	if apps[1].Name != "Xcode" || apps[1].Foreground {
		t.Errorf("xcode entry = %+v", apps[1])
	}

	if !apps[2].Hidden {
		t.Error("hidden UI element must be marked hidden")
	}
}

func TestAppsCollectFallbackToProcessScan(t *testing.T) {
	a := NewAppsCollector()
	a.run = fakeRunner(nil)
	a.procs = func() ([]models.RunningApp, error) {
		return []models.RunningApp{{Name: "Terminal", PID: 222}}, nil
	}

	apps := a.Collect()
	if len(apps) != 1 || apps[0].Name != "Terminal" {
		t.Errorf("apps = %+v, want fallback Terminal entry", apps)
	}
}

func TestAppsCollectTotalFailureYieldsEmpty(t *testing.T) {
	a := NewAppsCollector()
	a.run = fakeRunner(nil)
	a.procs = func() ([]models.RunningApp, error) { return nil, fmt.Errorf("denied") }

	if apps := a.Collect(); len(apps) != 0 {
		t.Errorf("apps = %+v, want empty on total failure", apps)
	}
}
