package utils

import (
	"runtime"
	"sync"
)

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	if ParallelDegree > maxIndex && maxIndex > 0 {
		ParallelDegree = maxIndex
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

var (
	procMu   sync.RWMutex
	numProcs = runtime.NumCPU()
)

// SetParallelDegree sets the worker count used by ParallelFor, n < 1 restores NumCPU.
func SetParallelDegree(n int) {
	procMu.Lock()
	defer procMu.Unlock()
	if n < 1 {
		n = runtime.NumCPU()
	}
	numProcs = n
}

func GetParallelDegree() int {
	procMu.RLock()
	defer procMu.RUnlock()
	return numProcs
}

// ParallelFor calls f once per bucket of [0, n) with the bucket's half open
// range. Each goroutine owns a disjoint range.
func ParallelFor(n int, f func(kMin, kMax int)) {
	if n <= 0 {
		return
	}
	var (
		pm = NewPartitionMap(GetParallelDegree(), n)
		wg = sync.WaitGroup{}
	)
	if pm.ParallelDegree == 1 {
		f(0, n)
		return
	}
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			f(kMin, kMax)
		}(np)
	}
	wg.Wait()
}
