package util

import (
	"fmt"
	"time"
)

func ExampleCSVToIntSlice() {
	out, _ := CSVToIntSlice("1024,768")
	fmt.Println(out)
	// Output: [1024 768]
}

func ExampleRingF64_Mean() {
	r := NewRingF64(4)
	r.Push(2)
	r.Push(4)
	fmt.Println(r.Mean())
	// Output: 3
}

func ExampleRingTime_Rate() {
	r := NewRingTime(8)
	t0 := time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)
	r.Push(t0)
	r.Push(t0.Add(time.Second))
	r.Push(t0.Add(2 * time.Second))
	fmt.Println(r.Rate())
	// Output: 1
}
