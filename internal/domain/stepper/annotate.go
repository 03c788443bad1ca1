package stepper

// Annotate assigns step numbers and list positions to an ordered sequence
// of descriptors. Numbered steps receive contiguous 1-based numbers in list
// order; non-numbered steps keep Number zero. Every step receives its
// 0-based list position as Index.
//
// An empty input or an input without a single numbered step is a
// configuration error: a checkout flow needs at least one navigable step.
func Annotate(steps []Descriptor) ([]Annotated, error) {
	if len(steps) == 0 {
		return nil, NewEmptyFlowError()
	}

	annotated := make([]Annotated, len(steps))
	number := 0
	for i, step := range steps {
		a := Annotated{Descriptor: step, Index: i}
		if step.Numbered {
			number++
			a.Number = number
		}
		annotated[i] = a
	}

	if number == 0 {
		return nil, NewNoNumberedStepsError()
	}

	return annotated, nil
}

// ActiveStep resolves the unique annotated step whose Number equals number.
// Failure to resolve is an invariant violation: the numbered subsequence is
// non-empty and callers clamp targets into range before committing them.
func ActiveStep(steps []Annotated, number int) (Annotated, error) {
	for _, step := range steps {
		if step.Numbered && step.Number == number {
			return step, nil
		}
	}
	return Annotated{}, NewStepNotFoundError(number)
}

// NextNumbered returns the first numbered step after from's list position.
// The second return is false when from is the last numbered step, which
// turns the terminal action from continue into submit.
func NextNumbered(steps []Annotated, from Annotated) (Annotated, bool) {
	for _, step := range steps {
		if step.Index > from.Index && step.Numbered {
			return step, true
		}
	}
	return Annotated{}, false
}

// MaxNumber returns the highest assigned step number.
func MaxNumber(steps []Annotated) int {
	max := 0
	for _, step := range steps {
		if step.Number > max {
			max = step.Number
		}
	}
	return max
}

// Clamp brings a target step number back into the valid range [1, max].
func Clamp(steps []Annotated, number int) int {
	if number < 1 {
		return 1
	}
	if max := MaxNumber(steps); number > max {
		return max
	}
	return number
}

// AllPreviousComplete reports whether every numbered step before number has
// been confirmed complete. Absent completion entries count as incomplete.
// A target of 1 has no predecessors and is vacuously eligible.
func AllPreviousComplete(steps []Annotated, number int, isComplete func(id string) bool) bool {
	for _, step := range steps {
		if !step.Numbered || step.Number >= number {
			continue
		}
		if !isComplete(step.ID.String()) {
			return false
		}
	}
	return true
}
