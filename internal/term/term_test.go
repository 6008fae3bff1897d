package term

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/camstitch/internal/config"
)

func TestConfigure_Always(t *testing.T) {
	t.Cleanup(func() { Configure(config.ColorNever) })
	Configure(config.ColorAlways)
	if !Enabled() || Red == "" || NC == "" {
		t.Error("colors should be enabled in always mode")
	}
}

func TestConfigure_Never(t *testing.T) {
	Configure(config.ColorAlways)
	Configure(config.ColorNever)
	if Enabled() || Green != "" || Magenta != "" {
		t.Error("colors should be cleared in never mode")
	}
}

func TestConfigure_AutoRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	Configure(config.ColorAuto)
	if Enabled() {
		t.Error("NO_COLOR should disable auto colors")
	}
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("a regular file is not a terminal")
	}
	if IsTerminal(nil) {
		t.Error("nil file is not a terminal")
	}
}
