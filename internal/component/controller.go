package component

// Controller binds an entity to a gameplay script function that turns
// input into impulses and movement each tick.
type Controller struct {
	Script string
	// Speed and JumpImpulse are handed to the script as tuning values.
	Speed       float64
	JumpImpulse float64
}
