package publish

const recordRowSchema = `{
  "type": "object",
  "title": "HealthRecordRow",
  "properties": {
    "record_type": {"type": ["string", "null"]},
    "source_name": {"type": ["string", "null"]},
    "source_version": {"type": ["string", "null"]},
    "source_bundle_id": {"type": ["string", "null"]},
    "device": {"type": ["string", "null"]},
    "unit": {"type": ["string", "null"]},
    "value_numeric": {"type": ["number", "null"]},
    "value_text": {"type": ["string", "null"]},
    "start_time": {"type": ["string", "null"]},
    "end_time": {"type": ["string", "null"]},
    "creation_time": {"type": ["string", "null"]},
    "metadata": {"type": ["object", "null"]},
    "record_hash": {"type": "string"},
    "raw": {"type": "object"}
  },
  "required": ["record_hash", "raw"],
  "additionalProperties": false
}`

const workoutRowSchema = `{
  "type": "object",
  "title": "HealthWorkoutRow",
  "properties": {
    "workout_type": {"type": ["string", "null"]},
    "source_name": {"type": ["string", "null"]},
    "source_version": {"type": ["string", "null"]},
    "source_bundle_id": {"type": ["string", "null"]},
    "device": {"type": ["string", "null"]},
    "start_time": {"type": ["string", "null"]},
    "end_time": {"type": ["string", "null"]},
    "duration_seconds": {"type": ["number", "null"]},
    "duration_unit": {"type": ["string", "null"]},
    "total_energy_burned": {"type": ["number", "null"]},
    "total_energy_unit": {"type": ["string", "null"]},
    "total_distance": {"type": ["number", "null"]},
    "total_distance_unit": {"type": ["string", "null"]},
    "avg_heart_rate": {"type": ["number", "null"]},
    "min_heart_rate": {"type": ["number", "null"]},
    "max_heart_rate": {"type": ["number", "null"]},
    "route_file": {"type": ["string", "null"]},
    "metadata": {"type": ["object", "null"]},
    "workout_hash": {"type": "string"},
    "raw": {"type": "object"}
  },
  "required": ["workout_hash", "raw"],
  "additionalProperties": false
}`
