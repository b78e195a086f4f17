package resample_test

import (
	"fmt"

	"github.com/cwbudde/algo-pedal/dsp/resample"
)

func ExampleConvert() {
	ir := make([]float64, 441)
	ir[0] = 1

	out, _ := resample.Convert(ir, 44100, 48000, resample.WithQuality(resample.QualityBest))
	fmt.Printf("in=%d out=%d\n", len(ir), len(out))
	// Output:
	// in=441 out=480
}
