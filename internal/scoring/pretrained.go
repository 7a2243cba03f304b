package scoring

// Coefficients exported from the reference training run. The strongest fraud
// signals in the dataset are low V14, V12, V10, V17 and high V4, V11.
var pretrainedWeights = []float64{
	// time
	-0.05,
	// v1..v10
	-0.10, 0.20, -0.40, 0.60, -0.10, -0.10, -0.30, 0.05, -0.30, -0.60,
	// v11..v20
	0.50, -0.70, -0.05, -0.90, 0.00, -0.40, -0.60, -0.20, 0.05, 0.00,
	// v21..v28
	0.20, 0.05, 0.00, 0.00, 0.00, 0.00, 0.10, 0.10,
	// amount
	0.15,
}

const (
	pretrainedBias    = -6.0
	pretrainedVersion = "1.0.0-pretrained"
)

// Time and Amount statistics of the training set.
var pretrainedScaler = StandardScaler{
	Mean:  [2]float64{94813.86, 88.35},
	Scale: [2]float64{47488.15, 250.12},
}

// Pretrained returns the built-in model used when no model file is present.
func Pretrained() *LogisticModel {
	scaler := pretrainedScaler
	m, err := NewLogisticModel(pretrainedWeights, pretrainedBias, DefaultThreshold, &scaler, pretrainedVersion)
	if err != nil {
		panic(err)
	}
	return m
}
