// Command pose applies parameter values to a puppet, runs one tick, and
// prints the resolved world transforms and deform statistics.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"inp-rig-runtime/internal/puppet"
	"inp-rig-runtime/internal/rig"
)

// setFlags collects repeated -set name=x[,y] assignments.
type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, " ") }

func (s *setFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var sets setFlags
	flag.Var(&sets, "set", "Parameter assignment name=x[,y] (repeatable)")
	order := flag.String("order", "back-to-front", "Draw order: back-to-front or front-to-back")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pose [-set name=x[,y]]... file.inp")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal("read failed", "err", err)
	}
	doc, err := puppet.Load(data)
	if err != nil {
		log.Fatal("load failed", "err", err)
	}

	session := rig.NewSession(doc)
	for _, assign := range sets {
		name, value, ok := strings.Cut(assign, "=")
		if !ok {
			log.Fatal("bad -set, want name=x[,y]", "got", assign)
		}
		x, y, err := parseValue(value)
		if err != nil {
			log.Fatal("bad -set value", "param", name, "err", err)
		}
		if !session.Set(name, x, y) {
			log.Warn("unknown parameter", "name", name)
		}
	}

	session.Tick()

	drawOrder := puppet.BackToFront
	if *order == "front-to-back" {
		drawOrder = puppet.FrontToBack
	}

	fmt.Printf("Draw order (%s):\n", *order)
	for _, n := range doc.ZSorted(drawOrder) {
		t := n.WorldTransform
		line := fmt.Sprintf("  %s %q z=%.2f t=(%.2f, %.2f) r=%.3f s=(%.2f, %.2f)",
			n.Type, n.Name, n.WorldZSort,
			t.Translation[0], t.Translation[1], t.Rotation[2], t.Scale[0], t.Scale[1])
		if peak := peakDeform(n); peak > 0 {
			line += fmt.Sprintf(" deform(max)=%.3f", peak)
		}
		fmt.Println(line)
	}
}

func parseValue(s string) (float32, float32, error) {
	xs, ys, has2 := strings.Cut(s, ",")
	x, err := strconv.ParseFloat(xs, 32)
	if err != nil {
		return 0, 0, err
	}
	var y float64
	if has2 {
		if y, err = strconv.ParseFloat(ys, 32); err != nil {
			return 0, 0, err
		}
	}
	return float32(x), float32(y), nil
}

func peakDeform(n *puppet.Node) float64 {
	peak := 0.0
	for _, d := range n.Deform {
		l := math.Sqrt(float64(d[0])*float64(d[0]) + float64(d[1])*float64(d[1]))
		if l > peak {
			peak = l
		}
	}
	return peak
}
