package gan_mnist

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// Layer Just an alias to Weight+Bias+ActivationFunction combo
//
// Probability - drop probability for LayerDropout
//
type Layer struct {
	WeightNode  *gorgonia.Node
	BiasNode    *gorgonia.Node
	Activation  ActivationFunc
	Type        LayerType
	Probability float64
}

type LayerType uint16

const (
	LayerLinear = LayerType(iota)
	LayerDropout
)

func (lt LayerType) String() string {
	switch lt {
	case LayerLinear:
		return "linear"
	case LayerDropout:
		return "dropout"
	default:
		return fmt.Sprintf("LayerType(%d)", uint16(lt))
	}
}

var (
	allowedNoWeights = []LayerType{LayerDropout}
)

func noWeightsAllowed(checkType LayerType) bool {
	return checkLayerType(checkType, allowedNoWeights...)
}

func checkLayerType(checkType LayerType, t ...LayerType) bool {
	for _, typeOf := range t {
		if checkType == typeOf {
			return true
		}
	}
	return false
}

// Fwd Feedforward input through layer (before activation)
//
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
// eval - if true then dropout acts as identity
//
func (l *Layer) Fwd(batchSize int, input *gorgonia.Node, eval bool) (*gorgonia.Node, error) {
	switch l.Type {
	case LayerLinear:
		if l.WeightNode == nil {
			return nil, fmt.Errorf("Linear layer has nil weight node")
		}
		tOp, err := gorgonia.Transpose(l.WeightNode)
		if err != nil {
			return nil, errors.Wrap(err, "Can't transpose weights")
		}
		out, err := gorgonia.Mul(input, tOp)
		if err != nil {
			return nil, errors.Wrap(err, "Can't multiply input and weights")
		}
		if l.BiasNode == nil {
			return out, nil
		}
		if batchSize < 2 {
			out, err = gorgonia.Add(out, l.BiasNode)
			if err != nil {
				return nil, errors.Wrap(err, "Can't add bias")
			}
			return out, nil
		}
		out, err = gorgonia.BroadcastAdd(out, l.BiasNode, nil, []byte{0})
		if err != nil {
			return nil, errors.Wrapf(err, "Can't add bias [in broadcast term with batch_size = %d]", batchSize)
		}
		return out, nil
	case LayerDropout:
		if eval || l.Probability == 0 {
			return input, nil
		}
		out, err := gorgonia.Dropout(input, l.Probability)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't apply dropout with probability %f", l.Probability)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("Layer type '%s' is not handled", l.Type)
	}
}
