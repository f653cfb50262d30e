package vst3

// DefaultParameterChangesCapacity bounds the number of parameter queues per
// block.
const DefaultParameterChangesCapacity = 400

// maxPointsPerQueue bounds the points in a single parameter queue.
const maxPointsPerQueue = 64

type point struct {
	offset int32
	value  ParamValue
}

// ParamValueQueue holds the automation points of one parameter for a block.
type ParamValueQueue struct {
	id     ParamID
	points []point
}

// GetParameterID of the queue
func (q *ParamValueQueue) GetParameterID() ParamID { return q.id }

// GetPointCount of the queue
func (q *ParamValueQueue) GetPointCount() int32 { return int32(len(q.points)) }

// GetPoint returns the sample offset and value at index.
func (q *ParamValueQueue) GetPoint(index int32) (int32, ParamValue, error) {
	if index < 0 || int(index) >= len(q.points) {
		return 0, 0, ResultInvalidArg
	}
	p := q.points[index]
	return p.offset, p.value, nil
}

// AddPoint appends a point and returns its index.
func (q *ParamValueQueue) AddPoint(sampleOffset int32, value ParamValue) (int32, error) {
	if len(q.points) >= maxPointsPerQueue {
		return -1, ResultOutOfMemory
	}
	q.points = append(q.points, point{offset: sampleOffset, value: value})
	return int32(len(q.points) - 1), nil
}

// Clear removes all points.
func (q *ParamValueQueue) Clear() {
	q.points = q.points[:0]
}

// Last returns the final point of the queue.
func (q *ParamValueQueue) Last() (int32, ParamValue, bool) {
	if len(q.points) == 0 {
		return 0, 0, false
	}
	p := q.points[len(q.points)-1]
	return p.offset, p.value, true
}

// ParameterChanges is the host-provided IParameterChanges container with a
// fixed queue capacity. Queues are recycled across blocks.
type ParameterChanges struct {
	queues   []*ParamValueQueue
	used     int
	capacity int
}

// NewParameterChanges creates a container holding at most capacity queues.
func NewParameterChanges(capacity int) *ParameterChanges {
	if capacity <= 0 {
		capacity = DefaultParameterChangesCapacity
	}
	return &ParameterChanges{capacity: capacity}
}

// GetParameterCount returns the number of queues in use.
func (c *ParameterChanges) GetParameterCount() int32 {
	return int32(c.used)
}

// GetParameterData returns the queue at index.
func (c *ParameterChanges) GetParameterData(index int32) *ParamValueQueue {
	if index < 0 || int(index) >= c.used {
		return nil
	}
	return c.queues[index]
}

// AddParameterData returns the queue for id, creating it when needed. The
// second result is the queue's index. A full container yields
// ResultOutOfMemory.
func (c *ParameterChanges) AddParameterData(id ParamID) (*ParamValueQueue, int32, error) {
	for i := 0; i < c.used; i++ {
		if c.queues[i].id == id {
			return c.queues[i], int32(i), nil
		}
	}
	if c.used >= c.capacity {
		return nil, -1, ResultOutOfMemory
	}
	if c.used == len(c.queues) {
		c.queues = append(c.queues, &ParamValueQueue{points: make([]point, 0, 4)})
	}
	q := c.queues[c.used]
	q.id = id
	q.points = q.points[:0]
	c.used++
	return q, int32(c.used - 1), nil
}

// Clear drops every queue.
func (c *ParameterChanges) Clear() {
	c.used = 0
}

// Capacity of the container
func (c *ParameterChanges) Capacity() int {
	return c.capacity
}
