package models

import "fmt"

// FeatureCount is the number of inputs the classifier expects.
const FeatureCount = 30

// FeatureNames lists the JSON keys of TransactionFeatures in model order.
var FeatureNames = [FeatureCount]string{
	"time",
	"v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8", "v9", "v10",
	"v11", "v12", "v13", "v14", "v15", "v16", "v17", "v18", "v19", "v20",
	"v21", "v22", "v23", "v24", "v25", "v26", "v27", "v28",
	"amount",
}

// TransactionFeatures is the flat 30-field input of a fraud prediction.
// Time is seconds since the first transaction of the dataset, V1..V28 are
// anonymized PCA components and Amount is the transaction amount.
type TransactionFeatures struct {
	Time   float64 `json:"time" validate:"gte=0"`
	V1     float64 `json:"v1"`
	V2     float64 `json:"v2"`
	V3     float64 `json:"v3"`
	V4     float64 `json:"v4"`
	V5     float64 `json:"v5"`
	V6     float64 `json:"v6"`
	V7     float64 `json:"v7"`
	V8     float64 `json:"v8"`
	V9     float64 `json:"v9"`
	V10    float64 `json:"v10"`
	V11    float64 `json:"v11"`
	V12    float64 `json:"v12"`
	V13    float64 `json:"v13"`
	V14    float64 `json:"v14"`
	V15    float64 `json:"v15"`
	V16    float64 `json:"v16"`
	V17    float64 `json:"v17"`
	V18    float64 `json:"v18"`
	V19    float64 `json:"v19"`
	V20    float64 `json:"v20"`
	V21    float64 `json:"v21"`
	V22    float64 `json:"v22"`
	V23    float64 `json:"v23"`
	V24    float64 `json:"v24"`
	V25    float64 `json:"v25"`
	V26    float64 `json:"v26"`
	V27    float64 `json:"v27"`
	V28    float64 `json:"v28"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// Vector returns the features in FeatureNames order.
func (f TransactionFeatures) Vector() []float64 {
	return []float64{
		f.Time,
		f.V1, f.V2, f.V3, f.V4, f.V5, f.V6, f.V7, f.V8, f.V9, f.V10,
		f.V11, f.V12, f.V13, f.V14, f.V15, f.V16, f.V17, f.V18, f.V19, f.V20,
		f.V21, f.V22, f.V23, f.V24, f.V25, f.V26, f.V27, f.V28,
		f.Amount,
	}
}

// FeaturesFromVector builds a record from values in FeatureNames order.
// Missing trailing values are left at zero and extra values are ignored.
func FeaturesFromVector(values []float64) TransactionFeatures {
	var v [FeatureCount]float64
	copy(v[:], values)
	return TransactionFeatures{
		Time: v[0],
		V1:   v[1], V2: v[2], V3: v[3], V4: v[4], V5: v[5], V6: v[6], V7: v[7],
		V8: v[8], V9: v[9], V10: v[10], V11: v[11], V12: v[12], V13: v[13], V14: v[14],
		V15: v[15], V16: v[16], V17: v[17], V18: v[18], V19: v[19], V20: v[20], V21: v[21],
		V22: v[22], V23: v[23], V24: v[24], V25: v[25], V26: v[26], V27: v[27], V28: v[28],
		Amount: v[29],
	}
}

// FeatureIndex returns the position of a feature key, or -1.
func FeatureIndex(name string) int {
	for i, n := range FeatureNames {
		if n == name {
			return i
		}
	}
	return -1
}

// Map returns the features keyed by their JSON names, the shape stored with
// each prediction log.
func (f TransactionFeatures) Map() JSON {
	m := make(JSON, FeatureCount)
	for i, v := range f.Vector() {
		m[FeatureNames[i]] = v
	}
	return m
}

func (f TransactionFeatures) String() string {
	return fmt.Sprintf("features(time=%.0f amount=%.2f)", f.Time, f.Amount)
}
