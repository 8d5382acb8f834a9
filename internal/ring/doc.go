/*
Package ring provides a generic fixed-capacity circular buffer.

Slots are allocated once by New and never resized. Push fails with ErrFull
instead of overwriting, and Pull on an empty buffer reports ok == false
instead of an error:

	buf, err := ring.New[string](5)
	if err != nil {
		return err
	}
	if err := buf.Push("13"); errors.Is(err, ring.ErrFull) {
		// apply backpressure
	}
	v, ok := buf.Pull()

The buffer does no locking and never blocks.
*/
package ring
