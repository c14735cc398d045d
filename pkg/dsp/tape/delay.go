package tape

import (
	"math"
	"math/rand"

	"github.com/palaceaudio/tapegrain/pkg/dsp/interpolation"
)

// Delay timing constants.
const (
	maxDelaySeconds = 2.0
	// Ring headroom: 5% for flutter plus 4 samples for Hermite reads.
	delayHeadroom = 1.05

	delaySmoothingCoeff = 0.001

	flutterFreq1 = 3.8 // Hz
	flutterFreq2 = 5.7 // Hz
)

// Delay is a stereo tape echo with modulated delay time, hiss, and a
// soft-clipped, DC-blocked feedback path. It runs continuously across
// notes; only Reset clears it.
type Delay struct {
	sampleRate float64
	bufferL    []float32
	bufferR    []float32
	writePos   int

	delayTimeMs   float32
	feedback      float32
	flutterAmount float32
	hissAmount    float32

	smoothedDelaySamples float32
	targetDelaySamples   float32

	lfoPhase1 float32
	lfoPhase2 float32

	rng *rand.Rand

	dcPrevInL  float32
	dcPrevOutL float32
	dcPrevInR  float32
	dcPrevOutR float32
}

const delayDCCoeff = 0.995

// NewDelay creates a delay sized for the maximum supported delay time
// plus interpolation headroom. The hiss source uses a fixed seed so two
// instances sound identical; use SetSeed to change it.
func NewDelay(sampleRate float64) *Delay {
	size := int(sampleRate*maxDelaySeconds*delayHeadroom) + 4
	d := &Delay{
		sampleRate:  sampleRate,
		bufferL:     make([]float32, size),
		bufferR:     make([]float32, size),
		delayTimeMs: 300.0,
		rng:         rand.New(rand.NewSource(42)),
	}
	d.targetDelaySamples = float32(float64(d.delayTimeMs) * 0.001 * sampleRate)
	d.smoothedDelaySamples = d.targetDelaySamples
	return d
}

// SetSeed reseeds the hiss generator.
func (d *Delay) SetSeed(seed int64) {
	d.rng = rand.New(rand.NewSource(seed))
}

// SetDelayTime sets the target delay in milliseconds. The running delay
// ramps toward it to avoid clicks.
func (d *Delay) SetDelayTime(delayMs float32) {
	maxMs := float32(maxDelaySeconds * 1000.0)
	if delayMs < 1.0 {
		delayMs = 1.0
	} else if delayMs > maxMs {
		delayMs = maxMs
	}
	d.delayTimeMs = delayMs
	d.targetDelaySamples = float32(float64(delayMs) * 0.001 * d.sampleRate)
}

// SetFeedback sets the feedback coefficient (0-1).
func (d *Delay) SetFeedback(fb float32) {
	d.feedback = clamp01(fb)
}

// SetFlutter sets the flutter depth (0-1). At 1 the read position
// wobbles by up to ±4% of the current delay time.
func (d *Delay) SetFlutter(amount float32) {
	d.flutterAmount = clamp01(amount)
}

// SetHiss sets the tape hiss level (0-1).
func (d *Delay) SetHiss(amount float32) {
	d.hissAmount = clamp01(amount)
}

// Reset clears the ring and all filter state. The delay-time ramp jumps
// straight to its target.
func (d *Delay) Reset() {
	for i := range d.bufferL {
		d.bufferL[i] = 0
		d.bufferR[i] = 0
	}
	d.writePos = 0
	d.lfoPhase1 = 0
	d.lfoPhase2 = 0
	d.dcPrevInL = 0
	d.dcPrevOutL = 0
	d.dcPrevInR = 0
	d.dcPrevOutR = 0
	d.smoothedDelaySamples = d.targetDelaySamples
}

// Process runs the echo over a stereo block in place, adding the wet
// signal to the input.
func (d *Delay) Process(left, right []float32) {
	size := len(d.bufferL)
	if size == 0 {
		return
	}
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	lfoInc1 := float32(flutterFreq1 / d.sampleRate)
	lfoInc2 := float32(flutterFreq2 / d.sampleRate)

	for i := 0; i < n; i++ {
		d.smoothedDelaySamples += delaySmoothingCoeff * (d.targetDelaySamples - d.smoothedDelaySamples)

		// Two incommensurate sine LFOs give the flutter a non-repeating feel.
		lfo1 := float32(math.Sin(float64(d.lfoPhase1) * 2.0 * math.Pi))
		lfo2 := float32(math.Sin(float64(d.lfoPhase2) * 2.0 * math.Pi))
		flutterOffset := d.flutterAmount * 0.04 * d.smoothedDelaySamples * (lfo1*0.6 + lfo2*0.4)

		d.lfoPhase1 += lfoInc1
		if d.lfoPhase1 >= 1.0 {
			d.lfoPhase1 -= 1.0
		}
		d.lfoPhase2 += lfoInc2
		if d.lfoPhase2 >= 1.0 {
			d.lfoPhase2 -= 1.0
		}

		readPos := float32(d.writePos) - d.smoothedDelaySamples - flutterOffset
		for readPos < 0 {
			readPos += float32(size)
		}

		wetL := d.readHermite(d.bufferL, readPos)
		wetR := d.readHermite(d.bufferR, readPos)

		if d.hissAmount > 0 {
			wetL += d.noise() * d.hissAmount * 0.03
			wetR += d.noise() * d.hissAmount * 0.03
		}

		// Feedback path: scale, cubic soft clip, DC block.
		fbL := wetL * d.feedback
		fbR := wetR * d.feedback

		fbL = fbL - (fbL*fbL*fbL)/3.0
		fbR = fbR - (fbR*fbR*fbR)/3.0

		dcOutL := fbL - d.dcPrevInL + delayDCCoeff*d.dcPrevOutL
		d.dcPrevInL = fbL
		d.dcPrevOutL = dcOutL
		fbL = dcOutL

		dcOutR := fbR - d.dcPrevInR + delayDCCoeff*d.dcPrevOutR
		d.dcPrevInR = fbR
		d.dcPrevOutR = dcOutR
		fbR = dcOutR

		d.bufferL[d.writePos] = left[i] + fbL
		d.bufferR[d.writePos] = right[i] + fbR

		left[i] += wetL
		right[i] += wetR

		d.writePos++
		if d.writePos >= size {
			d.writePos = 0
		}
	}
}

// readHermite samples the ring at a fractional position with 4-point
// Hermite interpolation.
func (d *Delay) readHermite(buffer []float32, position float32) float32 {
	size := len(buffer)

	i0 := int(position)
	frac := position - float32(i0)

	im1 := ((i0-1)%size + size) % size
	i1 := (i0 + 1) % size
	i2 := (i0 + 2) % size
	i0 %= size

	return interpolation.Hermite(buffer[im1], buffer[i0], buffer[i1], buffer[i2], frac)
}

func (d *Delay) noise() float32 {
	return float32(d.rng.Float64()*2.0 - 1.0)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
