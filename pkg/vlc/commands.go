package vlc

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// rc command vocabulary.
const (
	CmdPause   = "pause"
	CmdStop    = "stop"
	CmdStatus  = "status"
	CmdVolume  = "volume"
	CmdVolUp   = "volup"
	CmdVolDown = "voldown"
)

const (
	MinVolume = 0
	MaxVolume = 100

	// rc volume runs 0..512; one volup/voldown step is about 1.56%.
	rcVolumeScale  = 5.12
	percentPerStep = 1.56
)

// ErrVolumeRange is returned for volume percentages outside MinVolume..MaxVolume.
var ErrVolumeRange = errors.New("volume must be between 0 and 100")

// Pause toggles pause/play.
func (c *Client) Pause(ctx context.Context) (string, error) {
	return c.Do(ctx, CmdPause)
}

// Stop stops playback.
func (c *Client) Stop(ctx context.Context) (string, error) {
	return c.Do(ctx, CmdStop)
}

// Status returns VLC's status output.
func (c *Client) Status(ctx context.Context) (string, error) {
	return c.Do(ctx, CmdStatus)
}

// SetVolume sets an absolute volume in percent. Out of range values are
// rejected without contacting VLC.
func (c *Client) SetVolume(ctx context.Context, percent int) (string, error) {
	cmd, err := VolumeCommand(percent)
	if err != nil {
		return "", err
	}
	return c.Do(ctx, cmd, CmdStatus)
}

// ChangeVolume raises (positive delta) or lowers (negative delta) the volume
// by roughly delta percent. A zero delta only reports status.
func (c *Client) ChangeVolume(ctx context.Context, delta int) (string, error) {
	cmd := VolumeStepCommand(delta)
	if cmd == "" {
		return c.Do(ctx, CmdStatus)
	}
	return c.Do(ctx, cmd, CmdStatus)
}

// VolumeCommand maps a percentage to the rc volume command.
func VolumeCommand(percent int) (string, error) {
	if percent < MinVolume || percent > MaxVolume {
		return "", fmt.Errorf("%w: got %d", ErrVolumeRange, percent)
	}
	level := int(math.Round(float64(percent) * rcVolumeScale))
	return fmt.Sprintf("%s %d", CmdVolume, level), nil
}

// VolumeStepCommand maps a signed percentage delta to volup/voldown steps.
func VolumeStepCommand(delta int) string {
	if delta == 0 {
		return ""
	}

	steps := int(math.Round(math.Abs(float64(delta)) / percentPerStep))
	if steps < 1 {
		steps = 1
	}

	if delta > 0 {
		return fmt.Sprintf("%s %d", CmdVolUp, steps)
	}
	return fmt.Sprintf("%s %d", CmdVolDown, steps)
}
