package snake

// NumSensors is the length of the vector returned by Sensors.
const NumSensors = 12

// SensorNames labels every entry of the sensor vector.
var SensorNames = [NumSensors]string{
	"wall_n", "wall_e", "wall_s", "wall_w",
	"body_n", "body_e", "body_s", "body_w",
	"apple_dx", "apple_dy", "length", "bias",
}

// Sensors returns the normalized observation of the current state: distances
// to the wall and to the body in N, E, S, W order, the offset from the head to
// the apple, the snake's length and a constant 1.0 bias.
func (g *Game) Sensors() []float64 {
	out := make([]float64, 0, NumSensors)
	span := float64(max(g.width, g.height))
	for _, d := range g.WallDistances() {
		out = append(out, float64(d)/span)
	}
	for _, d := range g.BodyDistances() {
		out = append(out, float64(d)/span)
	}
	head := g.Head()
	out = append(out,
		float64(g.apple.X-head.X)/float64(g.width),
		float64(g.apple.Y-head.Y)/float64(g.height),
		float64(len(g.body))/float64(g.width*g.height),
		1.0,
	)
	return out
}
