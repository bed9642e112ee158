package master_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/imamik/seedmaster/internal/provisioning"
	"github.com/imamik/seedmaster/internal/provisioning/master"
	testutil "github.com/imamik/seedmaster/internal/testing"
	"github.com/imamik/seedmaster/internal/util/retry"
)

var _ = Describe("Orchestrator", func() {
	var (
		ctx       context.Context
		provider  *testutil.MockProvider
		channel   *testutil.ScriptedChannel
		observer  *testutil.RecordingObserver
		pollSleep *testutil.CountingSleeper
		bootSleep *testutil.CountingSleeper
		artifact  string
		session   string
	)

	newOrchestrator := func() *master.Orchestrator {
		return master.New(provider, channel,
			master.WithObserver(observer),
			master.WithPollPolicy(retry.Policy{Interval: time.Minute, Sleep: pollSleep.Sleep}),
			master.WithBootstrapPolicy(retry.Policy{Interval: time.Minute, Sleep: bootSleep.Sleep}),
			master.WithArtifactPath(artifact),
			master.WithSessionPath(session),
		)
	}

	acceptInstance := func(id int64) {
		provider.On("CreateInstance", mock.Anything, mock.Anything).
			Return(&provisioning.CreateResponse{StatusCode: http.StatusAccepted, InstanceID: id}, nil)
	}

	listInstance := func(id int64, address string) {
		provider.On("ListInstances", mock.Anything).Return([]provisioning.Instance{
			{ID: id, Networks: []provisioning.Network{{IPAddress: address, Type: "public"}}},
		}, nil)
	}

	BeforeEach(func() {
		ctx = context.Background()
		provider = &testutil.MockProvider{}
		channel = &testutil.ScriptedChannel{}
		observer = testutil.NewRecordingObserver()
		pollSleep = &testutil.CountingSleeper{}
		bootSleep = &testutil.CountingSleeper{}
		dir := GinkgoT().TempDir()
		artifact = filepath.Join(dir, master.DefaultArtifactPath)
		session = filepath.Join(dir, "google-session.json")
	})

	Context("when the provider answers the create request with 201", func() {
		BeforeEach(func() {
			provider.On("CreateInstance", mock.Anything, mock.Anything).
				Return(&provisioning.CreateResponse{StatusCode: http.StatusCreated, InstanceID: 42}, nil)
		})

		It("stops before polling or bootstrapping", func() {
			_, err := newOrchestrator().Run(ctx, testutil.MinimalConfig())

			Expect(err).To(MatchError(master.ErrCreateRejected))
			provider.AssertNotCalled(GinkgoT(), "ListActions", mock.Anything, mock.Anything)
			Expect(channel.Calls()).To(BeEmpty())
			Expect(pollSleep.Count()).To(BeZero())
		})
	})

	Context("when instance 42 needs two polls to finish", func() {
		BeforeEach(func() {
			acceptInstance(42)
			provider.On("ListActions", mock.Anything, int64(42)).
				Return(testutil.Actions(provisioning.ActionInProgress), nil).Twice()
			provider.On("ListActions", mock.Anything, int64(42)).
				Return(testutil.Actions(provisioning.ActionCompleted), nil).Once()
			listInstance(42, "203.0.113.7")
		})

		It("sleeps exactly twice before resolving the address", func() {
			res, err := newOrchestrator().Run(ctx, testutil.MinimalConfig())

			Expect(err).NotTo(HaveOccurred())
			Expect(pollSleep.Count()).To(Equal(2))
			Expect(pollSleep.Durations()).To(HaveEach(time.Minute))
			provider.AssertNumberOfCalls(GinkgoT(), "ListActions", 3)
			Expect(res.Address).To(Equal("203.0.113.7"))
		})

		It("writes the downstream config before bootstrapping", func() {
			_, err := newOrchestrator().Run(ctx, testutil.MinimalConfig())
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(artifact)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"local-ip":"203.0.113.7"`))
			Expect(string(data)).To(ContainSubstring(`"slave-name":"PTSlave-under-42"`))
			Expect(string(data)).NotTo(ContainSubstring("master-droplet-id"))
		})
	})

	Context("when the master refuses connections for two attempts", func() {
		BeforeEach(func() {
			acceptInstance(42)
			provider.On("ListActions", mock.Anything, int64(42)).
				Return(testutil.Actions(provisioning.ActionCompleted), nil)
			listInstance(42, "203.0.113.7")
			channel.Script = testutil.FailFirstAttempts(2,
				func(c testutil.Call) bool { return c.Op == "execute" && strings.HasPrefix(c.Command, "cd ~/") },
				errors.New("ssh: handshake failed: EOF"))
		})

		It("repeats all four steps three times and succeeds", func() {
			cfg := testutil.NewConfigBuilder().WithGoogleDrive("client_secret.json").Build()

			res, err := newOrchestrator().Run(ctx, cfg)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.BootstrapAttempts).To(Equal(3))
			Expect(bootSleep.Count()).To(Equal(2))

			calls := channel.Calls()
			Expect(calls).To(HaveLen(12))
			for attempt := 0; attempt < 3; attempt++ {
				batch := calls[attempt*4 : attempt*4+4]
				Expect(batch[0].Command).To(HavePrefix("git clone --recursive "))
				Expect(batch[1].RemotePath).To(Equal("~/ElasticPowerTAC-Master/config.json"))
				Expect(batch[2].RemotePath).To(Equal("~/ElasticPowerTAC-Master/google-session.json"))
				Expect(batch[3].Command).To(HaveSuffix("< /dev/null > /tmp/master-log 2>&1 &"))
			}
			Expect(observer.Lines()).To(ContainElement("Master has been initialized"))
		})

		It("hands the master its own id when the upload integration is on", func() {
			cfg := testutil.NewConfigBuilder().WithGoogleDrive("client_secret.json").Build()

			res, err := newOrchestrator().Run(ctx, cfg)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Artifact.MasterDropletID).NotTo(BeNil())
			Expect(*res.Artifact.MasterDropletID).To(Equal(int64(42)))
		})
	})

	Context("when an action errors", func() {
		BeforeEach(func() {
			acceptInstance(42)
			provider.On("ListActions", mock.Anything, int64(42)).
				Return(testutil.Actions(provisioning.ActionErrored), nil)
		})

		It("fails without resolving the address", func() {
			_, err := newOrchestrator().Run(ctx, testutil.MinimalConfig())

			Expect(errors.Is(err, master.ErrActionFailed)).To(BeTrue())
			provider.AssertNotCalled(GinkgoT(), "ListInstances", mock.Anything)
			Expect(channel.Calls()).To(BeEmpty())
		})
	})

	Context("when the run is cancelled during bootstrap", func() {
		It("stops before the next back-off", func() {
			acceptInstance(42)
			provider.On("ListActions", mock.Anything, int64(42)).
				Return(testutil.Actions(provisioning.ActionCompleted), nil)
			listInstance(42, "203.0.113.7")

			cctx, cancel := context.WithCancel(ctx)
			channel.Script = func(int, testutil.Call) error {
				cancel()
				return errors.New("connection reset by peer")
			}

			_, err := newOrchestrator().Run(cctx, testutil.MinimalConfig())

			Expect(err).To(MatchError(context.Canceled))
			Expect(bootSleep.Count()).To(BeZero())
		})
	})
})
