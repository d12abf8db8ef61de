package service

// orderedRandomizer samples the first k indices and never shuffles.
type orderedRandomizer struct{}

func (orderedRandomizer) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	out := make([]int, k)
	for i := range out {
		out[i] = i
	}
	return out
}

func (orderedRandomizer) Shuffle(int, func(i, j int)) {}

// reversingRandomizer samples the first k indices and reverses on shuffle.
type reversingRandomizer struct {
	orderedRandomizer
}

func (reversingRandomizer) Shuffle(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

const sampleBank = `SECTION: Basics
QUESTION 1. What is 2 + 2?
OPTIONS:
1. 3
2. 4
3. 5
ANSWER: 2

QUESTION 2. Pick the primes.
OPTIONS:
1. 2
2. 3
3. 4
ANSWER: 1, 2

SECTION: Advanced
QUESTION 3. Which layer routes packets?
OPTIONS:
1. Network
2. Session
ANSWER: 1
SECTION: Empty
`
