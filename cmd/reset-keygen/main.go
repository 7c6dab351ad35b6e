// reset-keygen mints a password-reset token for a user directly in the
// database, for support cases where the reset email never arrives.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hackreg-backend/entity"
)

func main() {
	email := flag.String("email", "", "Email of the user to generate a reset token for")
	uri := flag.String("mongo", os.Getenv("MONGO_URI"), "MongoDB connection string")
	exp := flag.String("exp", time.Now().Add(time.Hour).Format(time.RFC3339), "RFC3339 time of the expiration date")
	flag.Parse()

	if *email == "" {
		fmt.Println("--email is required")
		os.Exit(1)
	}

	if *uri == "" {
		*uri = "mongodb://localhost:27017"
	}

	ttl, err := time.Parse(time.RFC3339, *exp)
	if err != nil {
		fmt.Println("--exp invalid time")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*uri))
	if err != nil {
		fmt.Println("Failed connecting to database:", err)
		os.Exit(1)
	}

	db := client.Database("hackreg")

	u := &entity.User{}
	if err := db.Collection("users").FindOne(ctx, bson.M{"email": *email}).Decode(u); err != nil {
		fmt.Println("No user with that email:", err)
		os.Exit(1)
	}

	reset := &entity.PasswordReset{
		ID:     primitive.NewObjectID(),
		UserID: u.ID,
		Token:  uuid.NewString(),
		TTL:    ttl,
	}

	if _, err := db.Collection("password_resets").InsertOne(ctx, reset); err != nil {
		fmt.Println("Failed inserting reset token:", err)
		os.Exit(1)
	}

	fmt.Println("Token successfully generated:", reset.Token)
}
