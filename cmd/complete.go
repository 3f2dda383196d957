package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"init": {Flags: map[string]complete.Predictor{
				"force": predict.Nothing,
				"demo":  predict.Nothing,
			}},
			"check-token": {},
			"sync": {Flags: map[string]complete.Predictor{
				"dry-run":  predict.Nothing,
				"since":    predict.Something,
				"max-wait": predict.Set{"5m", "30m", "1h", "0"},
			}},
			"exports": {Flags: map[string]complete.Predictor{
				"n": predict.Something,
			}},
			"normalize": {
				Flags: map[string]complete.Predictor{
					"account": predict.Something,
					"o":       predict.Files("*.jsonl"),
				},
				Args: predict.Files("*.csv"),
			},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.json"),
			"v":      predict.Nothing,
		},
	}
}
