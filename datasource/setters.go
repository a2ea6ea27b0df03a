package datasource

func SetName(name string) UpdateSetter {
	return func(d *DataSource) error {
		if name == "" {
			return ErrInvalidName
		}
		d.Name = name
		return nil
	}
}

func SetDescription(description string) UpdateSetter {
	return func(d *DataSource) error {
		d.Description = description
		return nil
	}
}

func SetStatus(status Status) UpdateSetter {
	return func(d *DataSource) error {
		if !status.IsValid() {
			return ErrInvalidStatus
		}
		d.Status = status
		return nil
	}
}

func SetTargetURL(targetURL string) UpdateSetter {
	return func(d *DataSource) error {
		if d.SourceType == SourceTypeBrowserAgent && targetURL == "" {
			return ErrMissingTargetURL
		}
		d.TargetURL = targetURL
		return nil
	}
}

func SetInstruction(instruction string) UpdateSetter {
	return func(d *DataSource) error {
		if d.SourceType == SourceTypeBrowserAgent && instruction == "" {
			return ErrMissingInstruction
		}
		d.Instruction = instruction
		return nil
	}
}

func SetScheduleInterval(minutes int) UpdateSetter {
	return func(d *DataSource) error {
		if minutes < 1 {
			return ErrInvalidScheduleSpan
		}
		d.ScheduleIntervalMinutes = minutes
		return nil
	}
}

func SetConfig(config JSONMap) UpdateSetter {
	return func(d *DataSource) error {
		d.Config = config
		return nil
	}
}
