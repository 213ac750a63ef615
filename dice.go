package tavla

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"
	"sort"
)

// Roller returns a single die face in the range 1-6.
type Roller func() int

// RandInt returns a uniformly random integer in [0, max) read from
// crypto/rand.
func RandInt(max int) int {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}
	return int(i.Int64())
}

// RandomRoller rolls using crypto/rand.
func RandomRoller() int {
	return RandInt(6) + 1
}

// SeededRoller returns a deterministic roller.
func SeededRoller(seed uint64) Roller {
	r := mathrand.New(mathrand.NewPCG(seed, 0))
	return func() int {
		return r.IntN(6) + 1
	}
}

// FixedRoller returns the given faces in order, repeating them once exhausted.
func FixedRoller(faces ...int) Roller {
	var i int
	return func() int {
		if len(faces) == 0 {
			return 1
		}
		v := faces[i%len(faces)]
		i++
		return v
	}
}

// Dice is a pair of dice and the move distances still available from the
// last roll.
type Dice struct {
	Roll1 int
	Roll2 int

	values   []int
	rollable bool
	roll     Roller
}

func NewDice(roll Roller) *Dice {
	if roll == nil {
		roll = RandomRoller
	}
	return &Dice{
		Roll1:    1,
		Roll2:    3,
		rollable: true,
		roll:     roll,
	}
}

// Roll draws two new faces. Rolling is refused while values from the
// previous roll remain unused.
func (d *Dice) Roll() bool {
	if !d.rollable {
		return false
	}
	d.Roll1, d.Roll2 = d.roll(), d.roll()
	d.values = usableValues(d.Roll1, d.Roll2)
	d.rollable = false
	return true
}

func usableValues(roll1 int, roll2 int) []int {
	if roll1 == roll2 {
		return []int{roll1, roll1, roll1, roll1}
	}
	v := []int{roll1, roll2}
	sort.Ints(v)
	return v
}

// Values returns the sorted move distances that have not been used yet.
func (d *Dice) Values() []int {
	v := make([]int, len(d.values))
	copy(v, d.values)
	return v
}

// Have reports whether value may still be used.
func (d *Dice) Have(value int) bool {
	for _, v := range d.values {
		if v == value {
			return true
		}
	}
	return false
}

// Consume removes one instance of value. Once every value has been used the
// dice may be rolled again.
func (d *Dice) Consume(value int) bool {
	for i, v := range d.values {
		if v != value {
			continue
		}
		d.values = append(d.values[:i], d.values[i+1:]...)
		if len(d.values) == 0 {
			d.rollable = true
		}
		return true
	}
	return false
}

// Exhausted reports whether the last roll has been fully used.
func (d *Dice) Exhausted() bool {
	return len(d.values) == 0
}

// Rollable reports whether the dice are waiting to be rolled.
func (d *Dice) Rollable() bool {
	return d.rollable
}

// Reset drops any remaining values and readies the dice for the next roll.
func (d *Dice) Reset() {
	d.values = d.values[:0]
	d.rollable = true
}
