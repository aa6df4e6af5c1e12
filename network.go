package gan_mnist

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Network Abstraction for neural network.
//
// Layers - simple sequence of layers
// Eval - inference mode: dropout layers are skipped
// out - alias to activated output of last layer
//
type Network struct {
	Name   string
	Layers []*Layer
	Eval   bool
	out    *gorgonia.Node
}

// Out Returns reference to output node
func (net *Network) Out() *gorgonia.Node {
	return net.out
}

// Learnables Returns learnables nodes
func (net *Network) Learnables() gorgonia.Nodes {
	learnables := make(gorgonia.Nodes, 0, 2*len(net.Layers))
	for _, l := range net.Layers {
		if l != nil {
			if l.WeightNode != nil {
				learnables = append(learnables, l.WeightNode)
			}
			if l.BiasNode != nil {
				learnables = append(learnables, l.BiasNode)
			}
		}
	}
	return learnables
}

// Fwd Initializates feedforward for provided input
//
// input - Input node
// batchSize - batch size. If it's >= 2 then broadcast function will be applied
//
func (net *Network) Fwd(input *gorgonia.Node, batchSize int) error {
	networkName := "network"
	if net.Name != "" {
		networkName = net.Name
	}
	if len(net.Layers) == 0 {
		return fmt.Errorf("Network must have one layer atleast")
	}

	lastActivatedLayer := input
	for i := range net.Layers {
		if net.Layers[i] == nil {
			return fmt.Errorf("Network's layer #%d is nil", i)
		}
		if net.Layers[i].WeightNode == nil && !noWeightsAllowed(net.Layers[i].Type) {
			return fmt.Errorf("Network's layer's #%d WeightNode is nil", i)
		}
		layerNonActivated, err := net.Layers[i].Fwd(batchSize, lastActivatedLayer, net.Eval)
		if err != nil {
			return errors.Wrapf(err, "[Network, Layer #%d] Can't feedforward input before activation", i)
		}
		if layerNonActivated == lastActivatedLayer {
			// Layer was skipped (e.g. dropout in eval mode)
			continue
		}
		gorgonia.WithName(fmt.Sprintf("%s_%d", networkName, i))(layerNonActivated)
		activation := net.Layers[i].Activation
		if activation == nil {
			activation = NoActivation
		}
		layerActivated, err := activation(layerNonActivated)
		if err != nil {
			return errors.Wrapf(err, "Can't apply activation function to non-activated output of Network's layer #%d", i)
		}
		if layerActivated != layerNonActivated {
			gorgonia.WithName(fmt.Sprintf("%s_activated_%d", networkName, i))(layerActivated)
		}
		lastActivatedLayer = layerActivated
	}
	net.out = lastActivatedLayer
	return nil
}

// Share Creates copy of network's structure on graph g. Weights and biases of the copy are
// new nodes bound to the same values as original ones.
//
// suffix - appended to names of copied nodes and used as name of the copy
// eval - inference mode for the copy
//
func (net *Network) Share(g *gorgonia.ExprGraph, suffix string, eval bool) (*Network, error) {
	shared := &Network{
		Name:   net.Name + "_" + suffix,
		Layers: make([]*Layer, len(net.Layers)),
		Eval:   eval,
	}
	for i, l := range net.Layers {
		if l == nil {
			return nil, fmt.Errorf("%s's layer #%d is nil", net.Name, i)
		}
		if l.WeightNode == nil && !noWeightsAllowed(l.Type) {
			return nil, fmt.Errorf("%s's layer #%d has nil weight node", net.Name, i)
		}
		shared.Layers[i] = &Layer{
			Activation:  l.Activation,
			Type:        l.Type,
			Probability: l.Probability,
		}
		if l.WeightNode != nil {
			shared.Layers[i].WeightNode = shareNode(g, l.WeightNode, suffix)
		}
		if l.BiasNode != nil {
			shared.Layers[i].BiasNode = shareNode(g, l.BiasNode, suffix)
		}
	}
	return shared, nil
}

func shareNode(g *gorgonia.ExprGraph, n *gorgonia.Node, suffix string) *gorgonia.Node {
	return gorgonia.NewTensor(g, n.Dtype(), n.Dims(), gorgonia.WithShape(n.Shape()...), gorgonia.WithName(n.Name()+"_"+suffix), gorgonia.WithValue(n.Value()))
}

// syncLearnables Copies values of src nodes into dst nodes. Pairs already bound to the same tensor are skipped.
func syncLearnables(dst, src gorgonia.Nodes) error {
	if len(dst) != len(src) {
		return fmt.Errorf("Number of learnables mismatch: %d (dst) != %d (src)", len(dst), len(src))
	}
	for i := range src {
		srcT, ok := src[i].Value().(*tensor.Dense)
		if !ok {
			return fmt.Errorf("Learnable '%s' has no dense value", src[i].Name())
		}
		dstT, ok := dst[i].Value().(*tensor.Dense)
		if !ok {
			return fmt.Errorf("Learnable '%s' has no dense value", dst[i].Name())
		}
		if srcT == dstT {
			continue
		}
		if !srcT.Shape().Eq(dstT.Shape()) {
			return fmt.Errorf("Shapes of '%s' %v and '%s' %v mismatch", src[i].Name(), srcT.Shape(), dst[i].Name(), dstT.Shape())
		}
		if err := tensor.Copy(dstT, srcT); err != nil {
			return errors.Wrapf(err, "Can't copy '%s' into '%s'", src[i].Name(), dst[i].Name())
		}
	}
	return nil
}
