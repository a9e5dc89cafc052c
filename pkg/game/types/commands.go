package types

// CommandType is the wire tag of a Command variant.
type CommandType string

const (
	CommandTypeAddShip  CommandType = "AddShip"
	CommandTypeGuessPos CommandType = "GuessPos"
)

// Command is a request sent to the server. The server alone decides whether
// it is accepted; the client only learns the outcome from the next snapshot.
type Command interface {
	Type() CommandType
	isCommand()
}

// AddShip asks the server to place the next ship anchored at Loc.
type AddShip struct {
	Loc Location
	Dir ShipDirection
}

// GuessPos asks the server to attack Loc.
type GuessPos struct {
	Loc Location
}

func (AddShip) Type() CommandType  { return CommandTypeAddShip }
func (GuessPos) Type() CommandType { return CommandTypeGuessPos }

func (AddShip) isCommand()  {}
func (GuessPos) isCommand() {}
