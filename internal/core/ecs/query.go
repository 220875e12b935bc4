package ecs

// Each2 visits entities that have both A and B, in id order of A.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	sa.Each(func(id EntityID, a *A) {
		if b, ok := sb.data[id]; ok {
			fn(id, a, b)
		}
	})
}
