package auth

import (
	"context"
)

type contextKey string

const teacherKey contextKey = "teacher"

// Teacher is the authenticated caller of the assessment library API
type Teacher struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// GetTeacher retrieves the teacher from the context
func GetTeacher(ctx context.Context) *Teacher {
	t, _ := ctx.Value(teacherKey).(*Teacher)
	return t
}

// SetTeacherInContext stores the teacher in the context
func SetTeacherInContext(ctx context.Context, t *Teacher) context.Context {
	return context.WithValue(ctx, teacherKey, t)
}
