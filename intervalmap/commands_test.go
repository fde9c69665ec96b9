package intervalmap

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/commands"
	"github.com/leanovate/gopter/gen"
)

const (
	modelLow  = -5
	modelHigh = 45
)

// pointModel stores the value of every key in [modelLow, modelHigh)
// explicitly. Keys outside that range are never assigned by the
// generated commands and so keep the default.
type pointModel struct {
	dflt   string
	values []string
}

func newPointModel(dflt string) *pointModel {
	values := make([]string, modelHigh-modelLow)
	for i := range values {
		values[i] = dflt
	}
	return &pointModel{dflt: dflt, values: values}
}

func (pm *pointModel) at(key int) string {
	if key < modelLow || key >= modelHigh {
		return pm.dflt
	}
	return pm.values[key-modelLow]
}

func (pm *pointModel) assign(b, e int, val string) *pointModel {
	out := &pointModel{
		dflt:   pm.dflt,
		values: append([]string(nil), pm.values...),
	}
	for k := b; k < e; k++ {
		out.values[k-modelLow] = val
	}
	return out
}

// breakpoints derives the canonical breakpoints of the modelled
// function, the way the map must store them.
func (pm *pointModel) breakpoints() string {
	out := ""
	prev := pm.dflt
	for k := modelLow; k <= modelHigh; k++ {
		v := pm.at(k)
		if v != prev {
			out += fmt.Sprintf("%d->%s\n", k, v)
			prev = v
		}
	}
	return out
}

func (pm *pointModel) String() string {
	return fmt.Sprintf("default=%s breakpoints=%q", pm.dflt, pm.breakpoints())
}

type assignCommand assignment

func (c assignCommand) Run(sut commands.SystemUnderTest) commands.Result {
	m := sut.(*Map[int, string])
	m.Assign(c.Begin, c.End, c.Val)
	if err := checkCanonical(m); err != nil {
		return err
	}
	return m.String()
}

func (c assignCommand) NextState(state commands.State) commands.State {
	return state.(*pointModel).assign(c.Begin, c.End, c.Val)
}

func (assignCommand) PreCondition(commands.State) bool {
	return true
}

func (assignCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	if err, ok := result.(error); ok {
		return gopter.NewPropResult(false, err.Error())
	}
	if result.(string) != state.(*pointModel).breakpoints() {
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (c assignCommand) String() string {
	return assignment(c).String()
}

type atCommand int

func (c atCommand) Run(sut commands.SystemUnderTest) commands.Result {
	return sut.(*Map[int, string]).At(int(c))
}

func (atCommand) NextState(state commands.State) commands.State {
	return state
}

func (atCommand) PreCondition(commands.State) bool {
	return true
}

func (c atCommand) PostCondition(state commands.State, result commands.Result) *gopter.PropResult {
	if result.(string) != state.(*pointModel).at(int(c)) {
		return &gopter.PropResult{Status: gopter.PropFalse}
	}
	return &gopter.PropResult{Status: gopter.PropTrue}
}

func (c atCommand) String() string {
	return fmt.Sprintf("At(%d)", int(c))
}

var clearCommand = &commands.ProtoCommand{
	Name: "Clear",
	RunFunc: func(sut commands.SystemUnderTest) commands.Result {
		m := sut.(*Map[int, string])
		m.Clear()
		return m.Length()
	},
	NextStateFunc: func(state commands.State) commands.State {
		return newPointModel(state.(*pointModel).dflt)
	},
	PostConditionFunc: func(state commands.State, result commands.Result) *gopter.PropResult {
		if result.(int) != 0 {
			return &gopter.PropResult{Status: gopter.PropFalse}
		}
		return &gopter.PropResult{Status: gopter.PropTrue}
	},
}

var genModelKey = gen.IntRange(modelLow, modelHigh)

var genAssignCommand = gopter.CombineGens(
	genModelKey,
	genModelKey,
	gen.OneConstOf("A", "B", "C"),
).Map(func(vals []interface{}) commands.Command {
	return assignCommand{
		Begin: vals[0].(int),
		End:   vals[1].(int),
		Val:   vals[2].(string),
	}
})

var genAtCommand = gen.IntRange(modelLow-3, modelHigh+3).Map(
	func(key int) commands.Command {
		return atCommand(key)
	})

func mapCommands(newMap func() *Map[int, string]) commands.Commands {
	return &commands.ProtoCommands{
		NewSystemUnderTestFunc: func(commands.State) commands.SystemUnderTest {
			return newMap()
		},
		InitialStateGen: gen.Const(newPointModel("A")),
		GenCommandFunc: func(commands.State) gopter.Gen {
			return gen.Weighted([]gen.WeightedGen{
				{Weight: 6, Gen: genAssignCommand},
				{Weight: 3, Gen: genAtCommand},
				{Weight: 1, Gen: gen.Const(commands.Command(clearCommand))},
			})
		},
	}
}

func TestMapAgainstPointModel(t *testing.T) {
	for _, be := range backends {
		t.Run(be.name, func(t *testing.T) {
			parameters := gopter.DefaultTestParameters()
			parameters.MaxSize = 40
			properties := gopter.NewProperties(parameters)
			properties.Property("map behaves like a per-key table",
				commands.Prop(mapCommands(be.new)))
			properties.TestingRun(t)
		})
	}
}
