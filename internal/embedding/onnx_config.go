package embedding

// ONNXConfig describes an exported sentence-transformers model.
type ONNXConfig struct {
	Model       string
	ModelPath   string
	VocabPath   string
	LibraryPath string
	// OutputName is the token-level output, shape [1, MaxTokens, Dimensions].
	OutputName string
	Dimensions int
	MaxTokens  int
}

func (c *ONNXConfig) applyDefaults() {
	if c.Model == "" {
		c.Model = "all-MiniLM-L6-v2"
	}
	if c.OutputName == "" {
		c.OutputName = "last_hidden_state"
	}
	if c.Dimensions <= 0 {
		c.Dimensions = 384
	}
	if c.MaxTokens <= 2 {
		c.MaxTokens = 256
	}
}

// MeanPool averages token vectors (row-major, dims wide) over positions where mask is 1.
func MeanPool(hidden []float32, mask []int64, dims int) []float32 {
	out := make([]float32, dims)
	var count float32
	for pos, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[pos*dims : (pos+1)*dims]
		for i, v := range row {
			out[i] += v
		}
		count++
	}
	if count == 0 {
		return out
	}
	for i := range out {
		out[i] /= count
	}
	return out
}
