package validators

import "go.mongodb.org/mongo-driver/bson"

var PrescriptionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"appointment_id",
			"doctor_id",
			"patient_id",
			"medications",
			"issued_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"appointment_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"doctor_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"patient_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"medications": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name", "dose", "frequency", "duration"},
					"properties": bson.M{
						"name": bson.M{
							"bsonType":  "string",
							"minLength": 1,
							"maxLength": 200,
						},
						"dose": bson.M{
							"bsonType":  "string",
							"maxLength": 100,
						},
						"frequency": bson.M{
							"bsonType":  "string",
							"maxLength": 100,
						},
						"duration": bson.M{
							"bsonType":  "string",
							"maxLength": 100,
						},
						"instructions": bson.M{
							"bsonType":  "string",
							"maxLength": 1000,
						},
					},
				},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 5000,
			},

			"issued_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
