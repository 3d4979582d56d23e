package collectors

import "testing"

func TestCleanProcessName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"/usr/bin/top -a -b", "top"},
		{"/Applications/Xcode.app", "Xcode"},
		{"/Applications/Utilities/Terminal.app", "Terminal"},
		{"/System/Library/CoreServices/WindowServer", "WindowServer"},
		{"Google Chrome Helper", "Google Chrome Helper"},
		{"kernel_task", "kernel_task"},
		{"  Safari  ", "Safari"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanProcessName(c.raw); got != c.want {
			t.Errorf("CleanProcessName(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}
