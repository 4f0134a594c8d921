package framework

import (
	"sort"
	"strings"
)

const taskTableHeader = "TASK             PRI    PERIOD    RUNS   AVG DUR   MAX DUR  AVG LATE  MAX LATE"

// Scheduler owns all tasks grouped by priority.
// It's not safe for concurrent use: all scheduling happens
// on a single goroutine; only Task.Go may be called elsewhere.
type Scheduler struct {
	Clock Clock

	groups []*priorityGroup
}

type priorityGroup struct {
	priority int
	tasks    []*Task
	cursor   int
}

// NewScheduler creates a Scheduler.
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{Clock: clock}
}

// Register adds tasks to their priority groups. Groups are kept
// ordered from highest to lowest priority. Periodic tasks are
// armed to release one period from now.
func (s *Scheduler) Register(tasks ...*Task) *Scheduler {
	now := s.Clock.Now()
	for _, task := range tasks {
		var group *priorityGroup
		for _, g := range s.groups {
			if g.priority == task.priority {
				group = g
				break
			}
		}
		if group == nil {
			group = &priorityGroup{priority: task.priority}
			s.groups = append(s.groups, group)
			sort.SliceStable(s.groups, func(i, j int) bool {
				return s.groups[i].priority > s.groups[j].priority
			})
		}
		group.tasks = append(group.tasks, task)
		if task.period > 0 {
			task.arm(now)
		}
	}
	return s
}

// Tasks lists tasks in scheduling order.
func (s *Scheduler) Tasks() []*Task {
	var tasks []*Task
	for _, g := range s.groups {
		tasks = append(tasks, g.tasks...)
	}
	return tasks
}

// Find looks up a task by name.
func (s *Scheduler) Find(name string) *Task {
	for _, g := range s.groups {
		for _, t := range g.tasks {
			if t.name == name {
				return t
			}
		}
	}
	return nil
}

// RunRoundRobin offers every task a turn, in priority order,
// and reports whether any task ran. The first step error aborts
// the pass.
func (s *Scheduler) RunRoundRobin() (bool, error) {
	var ranAny bool
	for _, g := range s.groups {
		for _, t := range g.tasks {
			ran, err := t.schedule(s.Clock)
			if err != nil {
				return true, err
			}
			ranAny = ranAny || ran
		}
	}
	return ranAny, nil
}

// RunPriority runs at most one task: groups are scanned from
// highest priority, each starting at its rotation cursor, and it
// returns after the first task that actually runs. The cursor
// advances past every task offered a turn.
func (s *Scheduler) RunPriority() (bool, error) {
	for _, g := range s.groups {
		for tries := 0; tries < len(g.tasks); tries++ {
			t := g.tasks[g.cursor]
			g.cursor++
			if g.cursor >= len(g.tasks) {
				g.cursor = 0
			}
			ran, err := t.schedule(s.Clock)
			if ran || err != nil {
				return ran, err
			}
		}
	}
	return false, nil
}

// Run performs one scheduling call with the policy.
func (s *Scheduler) Run(policy Policy) (bool, error) {
	if policy == PolicyRoundRobin {
		return s.RunRoundRobin()
	}
	return s.RunPriority()
}

// String renders the task table.
func (s *Scheduler) String() string {
	lines := []string{taskTableHeader}
	for _, t := range s.Tasks() {
		lines = append(lines, t.String())
	}
	return strings.Join(lines, "\n")
}
