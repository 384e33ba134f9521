package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"role",
			"name",
			"email",
			"password_hash",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"role": bson.M{
				"bsonType": "string",
				"enum": []string{
					"patient",
					"doctor",
					"admin",
				},
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"password_hash": bson.M{
				"bsonType": "string",
			},

			"phone": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"dob": bson.M{
				"bsonType": "date",
			},

			"gender": bson.M{
				"bsonType": "string",
				"enum": []string{
					"male",
					"female",
					"other",
				},
			},

			"address": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"medical_history": bson.M{
				"bsonType":  "string",
				"maxLength": 5000,
			},

			"specialization": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"availability_slots": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day_of_week", "start_time", "end_time"},
					"properties": bson.M{
						"day_of_week": bson.M{
							"bsonType": "int",
							"minimum":  0,
							"maximum":  6,
						},
						"start_time": bson.M{
							"bsonType": "string",
							"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
						},
						"end_time": bson.M{
							"bsonType": "string",
							"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
						},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
