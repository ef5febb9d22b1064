package cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DeviceFormatter erases and reformats a remote device filesystem. The
// operation is a black box with a success/failure outcome; no device
// protocol details leak into the core.
type DeviceFormatter interface {
	Format(ctx context.Context, device string) error
}

// ExecDeviceFormatter shells out to an external device tool (mpremote by
// default) to reformat the device filesystem.
type ExecDeviceFormatter struct {
	// Tool is the executable to invoke. Defaults to "mpremote".
	Tool string
}

// Format runs the tool's filesystem-wipe command against the device.
func (f *ExecDeviceFormatter) Format(ctx context.Context, device string) error {
	tool := f.Tool
	if tool == "" {
		tool = "mpremote"
	}

	args := []string{"exec", "import os; os.umount('/'); os.VfsLfs2.mkfs(bdev); os.mount(bdev, '/')"}
	if device != "" {
		args = append([]string{"connect", device}, args...)
	}

	cmd := exec.CommandContext(ctx, tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("device format failed: %s", msg)
		}
		return fmt.Errorf("device format failed: %w", err)
	}
	return nil
}
