package gan_mnist

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

type LossReduction uint16

const (
	LossReductionSum = LossReduction(iota)
	LossReductionMean
)

// lossEpsilon Keeps log() away from zero when sigmoid saturates
const lossEpsilon = 1e-7

// BinaryCrossEntropyLoss See ref. https://en.wikipedia.org/wiki/Cross_entropy#Cross-entropy_loss_function_and_logistic_regression
// loss = -(B*log(A+eps) + (1-B)*log(1-A+eps))
// In case of binary variation of cross entropy loss: sample could belong to 0 or 1 only (soft targets are fine too).
// Default reduction is 'mean'
func BinaryCrossEntropyLoss(a, b *gorgonia.Node, reduction ...LossReduction) (*gorgonia.Node, error) {
	eps := gorgonia.NewScalar(a.Graph(), a.Dtype(), gorgonia.WithValue(lossEpsilon), gorgonia.WithName(a.Name()+"_bce_eps"))
	one := gorgonia.NewScalar(a.Graph(), a.Dtype(), gorgonia.WithValue(1.0), gorgonia.WithName(a.Name()+"_bce_one"))

	// Main part the same as cross entropy
	shiftedMain, err := gorgonia.Add(a, eps)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (A+eps)")
	}
	logMain, err := gorgonia.Log(shiftedMain)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do log(A)")
	}
	hprodMain, err := gorgonia.HadamardProd(logMain, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x.*B)")
	}

	// Here comes another part
	invA, err := gorgonia.Sub(one, a)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (1-A)")
	}
	shiftedBin, err := gorgonia.Add(invA, eps)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (1-A+eps)")
	}
	logBin, err := gorgonia.Log(shiftedBin)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do log(1-A)")
	}
	invB, err := gorgonia.Sub(one, b)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (1-B)")
	}
	hprodBin, err := gorgonia.HadamardProd(logBin, invB)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x.*(1-B))")
	}
	sum, err := gorgonia.Add(hprodMain, hprodBin)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do (x+y)")
	}
	hprod, err := gorgonia.Neg(sum)
	if err != nil {
		return nil, errors.Wrap(err, "Can't do -1*x")
	}

	reductionDefault := LossReductionMean
	if len(reduction) != 0 {
		reductionDefault = reduction[0]
	}
	switch reductionDefault {
	case LossReductionSum:
		return gorgonia.Sum(hprod)
	case LossReductionMean:
		return gorgonia.Mean(hprod)
	default:
		return nil, fmt.Errorf("Reduction type %d is not supported", reductionDefault)
	}
}
