package api_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"orgrepos/internal/api"
)

// fixture pairs an organization document with its repositories payload and
// the names the client is expected to report for it.
type fixture struct {
	org            string
	orgFile        string
	reposFile      string
	reposURL       string
	expectedRepos  []string
	licensedRepos  []string
	licenseForTest string
}

var (
	googleFixture = fixture{
		org:       "google",
		orgFile:   "google_org.json",
		reposFile: "google_repos.json",
		reposURL:  "https://api.github.com/orgs/google/repos",
		expectedRepos: []string{
			"episodes.dart",
			"cpp-netlib",
			"dagger",
			"ios-webkit-debug-proxy",
			"google.github.io",
			"kratu",
			"build-debian-cloud",
			"traceur-compiler",
		},
		licensedRepos:  []string{"dagger", "kratu", "traceur-compiler"},
		licenseForTest: "apache-2.0",
	}
	mockOrgFixture = fixture{
		org:            "mock-org",
		orgFile:        "mock_org.json",
		reposFile:      "mock_repos.json",
		reposURL:       "https://api.github.com/orgs/mock-org/repos",
		expectedRepos:  []string{"repo1", "repo2", "repo3"},
		licensedRepos:  []string{"repo1"},
		licenseForTest: "my_license",
	}
)

func readFixture(name string) []byte {
	data, err := os.ReadFile(filepath.Join("testdata", name))
	Expect(err).NotTo(HaveOccurred())
	return data
}

var _ = Describe("GitHubOrgClient against mocked HTTP", func() {
	var (
		transport *httpmock.MockTransport
		fetcher   *api.HTTPFetcher
		ctx       context.Context
	)

	BeforeEach(func() {
		transport = httpmock.NewMockTransport()
		fetcher = &api.HTTPFetcher{Client: &http.Client{Transport: transport}}
		ctx = context.Background()
	})

	register := func(f fixture) {
		transport.RegisterResponder(http.MethodGet, "https://api.github.com/orgs/"+f.org,
			httpmock.NewBytesResponder(http.StatusOK, readFixture(f.orgFile)))
		transport.RegisterResponder(http.MethodGet, f.reposURL,
			httpmock.NewBytesResponder(http.StatusOK, readFixture(f.reposFile)))
	}

	DescribeTable("public repos",
		func(f fixture) {
			register(f)
			client := api.NewGitHubOrgClient(f.org, fetcher)

			repos, err := client.PublicRepos(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(repos).To(Equal(f.expectedRepos))

			info := transport.GetCallCountInfo()
			Expect(info["GET https://api.github.com/orgs/"+f.org]).To(Equal(1))
			Expect(info["GET "+f.reposURL]).To(Equal(1))
		},
		Entry("google", googleFixture),
		Entry("mock-org", mockOrgFixture),
	)

	DescribeTable("public repos filtered by license",
		func(f fixture) {
			register(f)
			client := api.NewGitHubOrgClient(f.org, fetcher)

			repos, err := client.PublicRepos(ctx, f.licenseForTest)
			Expect(err).NotTo(HaveOccurred())
			Expect(repos).To(Equal(f.licensedRepos))
		},
		Entry("google apache-2.0", googleFixture),
		Entry("mock-org my_license", mockOrgFixture),
	)

	DescribeTable("repos payload",
		func(f fixture) {
			register(f)
			client := api.NewGitHubOrgClient(f.org, fetcher)

			url, err := client.PublicReposURL(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(url).To(Equal(f.reposURL))

			payload, err := client.ReposPayload(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(payload).To(HaveLen(len(f.expectedRepos)))
			for i, repo := range payload {
				Expect(repo).To(HaveKeyWithValue("name", f.expectedRepos[i]))
			}
		},
		Entry("google", googleFixture),
		Entry("mock-org", mockOrgFixture),
	)

	It("issues exactly two requests across repeated calls", func() {
		register(googleFixture)
		client := api.NewGitHubOrgClient("google", fetcher)

		for i := 0; i < 3; i++ {
			_, err := client.PublicRepos(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = client.PublicRepos(ctx, "apache-2.0")
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(transport.GetTotalCallCount()).To(Equal(2))
	})

	It("surfaces a 404 for an unknown organization", func() {
		transport.RegisterResponder(http.MethodGet, "https://api.github.com/orgs/nope",
			httpmock.NewStringResponder(http.StatusNotFound, `{"message": "Not Found"}`))
		client := api.NewGitHubOrgClient("nope", fetcher)

		repos, err := client.PublicRepos(ctx, "")
		Expect(err).To(MatchError(ContainSubstring("request failed with status 404")))
		Expect(repos).To(BeNil())
		Expect(transport.GetTotalCallCount()).To(Equal(1))
	})
})
