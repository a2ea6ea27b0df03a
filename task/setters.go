package task

import "time"

func SetTitle(title string) UpdateSetter {
	return func(t *Task) error {
		if title == "" {
			return ErrInvalidTitle
		}
		if len(title) > 500 {
			return ErrTitleTooLong
		}
		t.Title = title
		return nil
	}
}

func SetDescription(description string) UpdateSetter {
	return func(t *Task) error {
		t.Description = description
		return nil
	}
}

func SetStatus(status Status) UpdateSetter {
	return func(t *Task) error {
		return t.MarkStatus(status)
	}
}

func SetPriority(priority Priority) UpdateSetter {
	return func(t *Task) error {
		if !priority.IsValid() {
			return ErrInvalidPriority
		}
		t.Priority = priority
		return nil
	}
}

func SetDueDate(dueDate *time.Time) UpdateSetter {
	return func(t *Task) error {
		t.DueDate = dueDate
		return nil
	}
}

func SetScheduledDate(scheduledDate *time.Time) UpdateSetter {
	return func(t *Task) error {
		t.ScheduledDate = scheduledDate
		return nil
	}
}

func SetTags(tags []string) UpdateSetter {
	return func(t *Task) error {
		t.Tags = tags
		return nil
	}
}

func SetExtraData(extraData JSONMap) UpdateSetter {
	return func(t *Task) error {
		t.ExtraData = extraData
		return nil
	}
}
