package security_test

import (
	"testing"
	"time"

	"github.com/clefscore/clef/internal/adapters/security"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBcryptHasher(t *testing.T) {
	Convey("Given a hasher with minimum cost", t, func() {
		hasher := security.NewBcryptHasher(4)

		Convey("When hashing a password", func() {
			hash, err := hasher.Hash("correct horse battery staple")
			So(err, ShouldBeNil)
			So(hash, ShouldNotEqual, "correct horse battery staple")

			Convey("Then the right password verifies", func() {
				So(hasher.Compare(hash, "correct horse battery staple"), ShouldBeNil)
			})

			Convey("And a wrong password does not", func() {
				err := hasher.Compare(hash, "hunter2")
				So(err, ShouldEqual, security.ErrPasswordMismatch)
			})
		})
	})
}

func TestJWTService(t *testing.T) {
	Convey("Given a token service", t, func() {
		tokens := security.NewJWTService("test-secret", time.Hour)

		Convey("When issuing a token", func() {
			token, expiresIn, err := tokens.Issue("user-42")
			So(err, ShouldBeNil)
			So(token, ShouldNotBeEmpty)
			So(expiresIn, ShouldEqual, 3600)

			Convey("Then it validates back to the same user", func() {
				userID, err := tokens.Validate(token)
				So(err, ShouldBeNil)
				So(userID, ShouldEqual, "user-42")
			})

			Convey("And a service with another secret rejects it", func() {
				other := security.NewJWTService("other-secret", time.Hour)
				_, err := other.Validate(token)
				So(err, ShouldEqual, security.ErrInvalidToken)
			})
		})

		Convey("When a token has expired", func() {
			expired := security.NewJWTService("test-secret", -time.Minute)
			token, _, err := expired.Issue("user-42")
			So(err, ShouldBeNil)

			Convey("Then validation rejects it", func() {
				_, err := tokens.Validate(token)
				So(err, ShouldEqual, security.ErrInvalidToken)
			})
		})

		Convey("When validating garbage", func() {
			_, err := tokens.Validate("not.a.jwt")

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, security.ErrInvalidToken)
			})
		})
	})
}
