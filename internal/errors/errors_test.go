package errors

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "task 42 not found",
			},
			want: "task 42 not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to save task",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to save task: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestTaskNotFound(t *testing.T) {
	err := TaskNotFound(42)
	if !IsNotFound(err) {
		t.Errorf("TaskNotFound().Code = %v, want %v", err.Code, ErrCodeNotFound)
	}
	if err.Message != "task 42 not found" {
		t.Errorf("TaskNotFound().Message = %v", err.Message)
	}
	if got := err.Details["task_id"]; got != int64(42) {
		t.Errorf("TaskNotFound().Details[task_id] = %v, want 42", got)
	}
}

func TestTaskAlreadyFinished(t *testing.T) {
	err := TaskAlreadyFinished(7, "completed")
	if !IsAlreadyFinished(err) {
		t.Errorf("TaskAlreadyFinished().Code = %v, want %v", err.Code, ErrCodeAlreadyFinished)
	}
	if got := err.Details["status"]; got != "completed" {
		t.Errorf("TaskAlreadyFinished().Details[status] = %v", got)
	}
}

func TestTaskNotStarted(t *testing.T) {
	err := TaskNotStarted(3)
	if !IsNotStarted(err) {
		t.Errorf("TaskNotStarted().Code = %v, want %v", err.Code, ErrCodeNotStarted)
	}
	if got := err.Details["task_id"]; got != int64(3) {
		t.Errorf("TaskNotStarted().Details[task_id] = %v, want 3", got)
	}
}

func TestDependencyNotMet(t *testing.T) {
	err := DependencyNotMet(5, []int64{2, 9})
	if !IsDependencyNotMet(err) {
		t.Errorf("DependencyNotMet().Code = %v, want %v", err.Code, ErrCodeDependencyNotMet)
	}
	if err.Field != "depends_on" {
		t.Errorf("DependencyNotMet().Field = %v, want depends_on", err.Field)
	}
	unmet, ok := err.Details["unmet_ids"].([]int64)
	if !ok || len(unmet) != 2 || unmet[0] != 2 || unmet[1] != 9 {
		t.Errorf("DependencyNotMet().Details[unmet_ids] = %v", err.Details["unmet_ids"])
	}
}

func TestIncompleteChildren(t *testing.T) {
	err := IncompleteChildren(1, []int64{4})
	if err.Code != ErrCodeIncompleteChildren {
		t.Errorf("IncompleteChildren().Code = %v, want %v", err.Code, ErrCodeIncompleteChildren)
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("priority", "priority must be a positive integer")
	if !IsValidation(err) {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "priority" {
		t.Errorf("ValidationField().Field = %v, want priority", err.Field)
	}
}

func TestConflict(t *testing.T) {
	err := Conflictf("webhook sink %q already exists", "ops-hook")
	if !IsConflict(err) {
		t.Errorf("Conflictf().Code = %v, want %v", err.Code, ErrCodeConflict)
	}
	if err.Message != `webhook sink "ops-hook" already exists` {
		t.Errorf("Conflictf().Message = %v", err.Message)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrCodeInternal, "save task failed")

	if err.Code != ErrCodeInternal {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeInternal)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap() should preserve the cause for errors.Is")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "wrapped error"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrapf(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeTimeout, "save task %d", 12)
	if err.Message != "save task 12" {
		t.Errorf("Wrapf().Message = %v", err.Message)
	}
	if !IsTimeout(err) {
		t.Errorf("Wrapf().Code = %v, want %v", err.Code, ErrCodeTimeout)
	}
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		err   error
		want  bool
	}{
		{name: "not found matches", check: IsNotFound, err: TaskNotFound(1), want: true},
		{name: "not found rejects conflict", check: IsNotFound, err: Conflict("dup"), want: false},
		{name: "validation matches field error", check: IsValidation, err: ValidationField("tags", "bad"), want: true},
		{name: "already finished", check: IsAlreadyFinished, err: TaskAlreadyFinished(1, "canceled"), want: true},
		{name: "not started", check: IsNotStarted, err: TaskNotStarted(1), want: true},
		{name: "dependency not met", check: IsDependencyNotMet, err: DependencyNotMet(1, nil), want: true},
		{name: "canceled", check: IsCanceled, err: &AppError{Code: ErrCodeCanceled, Message: "canceled"}, want: true},
		{name: "standard error", check: IsInternal, err: errors.New("plain"), want: false},
		{name: "nil error", check: IsNotFound, err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{
			name: "app error",
			err:  TaskNotFound(9),
			want: ErrCodeNotFound,
		},
		{
			name: "wrapped app error reports outermost code",
			err:  Wrap(TaskNotFound(9), ErrCodeInternal, "outer"),
			want: ErrCodeInternal,
		},
		{
			name: "standard error",
			err:  errors.New("standard error"),
			want: "",
		},
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetField(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "validation field error",
			err:  ValidationField("deadline", "invalid"),
			want: "deadline",
		},
		{
			name: "error without field",
			err:  TaskNotFound(1),
			want: "",
		},
		{
			name: "standard error",
			err:  errors.New("standard error"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetField(tt.err); got != tt.want {
				t.Errorf("GetField() = %v, want %v", got, tt.want)
			}
		})
	}
}
