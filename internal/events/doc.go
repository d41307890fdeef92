// Package events decouples job submission from job execution. When a
// lesson is created or a section improvement is requested, the owning
// service emits a TaskRequestEvent naming the task type and the entity it
// acts on. The task layer registers an EventHandler that turns those
// events into queued background tasks, so services never import the task
// machinery directly.
package events
