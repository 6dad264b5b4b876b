// Package timecode provides pure conversions between seconds, frame counts
// and SMPTE/SRT time strings at a fixed frame rate. Every exporter derives
// its frame math from here so totals never diverge between formats.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FramesToTimecode formats a frame count as non-drop SMPTE HH:MM:SS:FF.
// Behavior above 99 hours is unspecified. Panics on negative input; frame
// counts are derived from clamped durations and can never be negative here.
func FramesToTimecode(frameCount, fps int) string {
	if fps <= 0 {
		panic(fmt.Sprintf("timecode: invalid fps %d", fps))
	}
	if frameCount < 0 {
		panic(fmt.Sprintf("timecode: negative frame count %d", frameCount))
	}

	frames := frameCount % fps
	totalSeconds := frameCount / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}

// TimecodeToFrames parses HH:MM:SS:FF back into an absolute frame count.
func TimecodeToFrames(tc string, fps int) (int, error) {
	if fps <= 0 {
		return 0, fmt.Errorf("invalid fps %d", fps)
	}

	parts := strings.Split(tc, ":")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid timecode %q: want HH:MM:SS:FF", tc)
	}

	var fields [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid timecode %q: %w", tc, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("invalid timecode %q: negative field", tc)
		}
		fields[i] = n
	}
	if fields[3] >= fps {
		return 0, fmt.Errorf("invalid timecode %q: frame field %d >= fps %d", tc, fields[3], fps)
	}

	return (fields[0]*3600+fields[1]*60+fields[2])*fps + fields[3], nil
}

// DurationToFrames converts a duration in seconds to a frame count using
// round-half-away-from-zero. This rounding rule is the single unit of truth
// for frame-accurate placement; every generator must use it.
func DurationToFrames(seconds float64, fps int) int {
	guardSeconds(seconds)
	if fps <= 0 {
		panic(fmt.Sprintf("timecode: invalid fps %d", fps))
	}
	return int(math.Floor(seconds*float64(fps) + 0.5))
}

// SecondsToSRTTime formats an absolute position as SRT HH:MM:SS,mmm after
// adding a fixed start offset. Whole seconds and the millisecond remainder
// are floored independently.
func SecondsToSRTTime(seconds, offsetSeconds float64) string {
	guardSeconds(seconds)
	guardSeconds(offsetSeconds)

	total := seconds + offsetSeconds
	whole := int(math.Floor(total))
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	millis := int(math.Floor((total - math.Floor(total)) * 1000))
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// guardSeconds asserts the upstream clamp: durations reaching this layer are
// finite and non-negative, anything else is a programming error.
func guardSeconds(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		panic(fmt.Sprintf("timecode: invalid seconds value %v", v))
	}
}
